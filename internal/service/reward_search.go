package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
	"github.com/salingbantu/impact-engine/internal/model"
	"github.com/salingbantu/impact-engine/internal/repository"
)

const rewardIndex = "rewards"

// RewardSearch mirrors the reward catalog into Meilisearch so the store can
// offer typo-tolerant search with category and cost filters.
type RewardSearch interface {
	IndexReward(ctx context.Context, rewardID uuid.UUID) error
	IndexAll(ctx context.Context) error
	DeleteReward(id string) error
	Search(ctx context.Context, query, category string, maxCost, limit int) ([]meiliRewardDoc, error)
}

type rewardSearch struct {
	client meilisearch.ServiceManager
	repo   repository.RewardRepository
}

func NewRewardSearch(client meilisearch.ServiceManager, repo repository.RewardRepository) RewardSearch {
	s := &rewardSearch{client: client, repo: repo}
	s.initIndex()
	return s
}

func (s *rewardSearch) initIndex() {
	filterableAttrs := []string{"category", "points_cost", "available", "in_stock"}
	filterableInterface := make([]any, len(filterableAttrs))
	for i, v := range filterableAttrs {
		filterableInterface[i] = v
	}
	if _, err := s.client.Index(rewardIndex).UpdateFilterableAttributes(&filterableInterface); err != nil {
		log.Printf("Failed to update rewards filterable attributes: %v", err)
	}

	sortableAttrs := []string{"points_cost", "created_at"}
	if _, err := s.client.Index(rewardIndex).UpdateSortableAttributes(&sortableAttrs); err != nil {
		log.Printf("Failed to update rewards sortable attributes: %v", err)
	}
}

type meiliRewardDoc struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	PointsCost  int    `json:"points_cost"`
	Available   bool   `json:"available"`
	InStock     bool   `json:"in_stock"`
	CreatedAt   int64  `json:"created_at"`
}

func toRewardDoc(reward *model.Reward) meiliRewardDoc {
	return meiliRewardDoc{
		ID:          reward.ID.String(),
		Title:       reward.Title,
		Description: reward.Description,
		Category:    reward.Category,
		PointsCost:  reward.PointsCost,
		Available:   reward.Available,
		InStock:     reward.Stock == nil || *reward.Stock > 0,
		CreatedAt:   reward.CreatedAt.Unix(),
	}
}

func (s *rewardSearch) IndexReward(ctx context.Context, rewardID uuid.UUID) error {
	reward, err := s.repo.FindByID(ctx, rewardID)
	if err != nil {
		return err
	}

	doc := toRewardDoc(reward)
	task, err := s.client.Index(rewardIndex).AddDocuments([]meiliRewardDoc{doc}, strPtr("id"))
	if err != nil {
		return err
	}
	log.Printf("Indexed reward %s, task id: %d", reward.ID, task.TaskUID)
	return nil
}

func (s *rewardSearch) IndexAll(ctx context.Context) error {
	rewards, err := s.repo.ListAvailable(ctx)
	if err != nil {
		return err
	}
	if len(rewards) == 0 {
		return nil
	}

	docs := make([]meiliRewardDoc, 0, len(rewards))
	for i := range rewards {
		docs = append(docs, toRewardDoc(&rewards[i]))
	}

	task, err := s.client.Index(rewardIndex).AddDocuments(docs, strPtr("id"))
	if err != nil {
		return err
	}
	log.Printf("Indexed %d rewards, task id: %d", len(docs), task.TaskUID)
	return nil
}

func (s *rewardSearch) DeleteReward(id string) error {
	_, err := s.client.Index(rewardIndex).DeleteDocument(id)
	return err
}

func (s *rewardSearch) Search(_ context.Context, query, category string, maxCost, limit int) ([]meiliRewardDoc, error) {
	filter := "available = true AND in_stock = true"
	if category != "" {
		filter += fmt.Sprintf(" AND category = %q", category)
	}
	if maxCost > 0 {
		filter += fmt.Sprintf(" AND points_cost <= %d", maxCost)
	}

	if limit <= 0 {
		limit = 20
	}

	resp, err := s.client.Index(rewardIndex).Search(query, &meilisearch.SearchRequest{
		Filter: filter,
		Limit:  int64(limit),
		Sort:   []string{"points_cost:asc"},
	})
	if err != nil {
		return nil, err
	}

	docs := make([]meiliRewardDoc, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		doc := meiliRewardDoc{}
		if raw, ok := hit["id"]; ok {
			var v string
			if json.Unmarshal(raw, &v) == nil {
				doc.ID = v
			}
		}
		if raw, ok := hit["title"]; ok {
			var v string
			if json.Unmarshal(raw, &v) == nil {
				doc.Title = v
			}
		}
		if raw, ok := hit["description"]; ok {
			var v string
			if json.Unmarshal(raw, &v) == nil {
				doc.Description = v
			}
		}
		if raw, ok := hit["category"]; ok {
			var v string
			if json.Unmarshal(raw, &v) == nil {
				doc.Category = v
			}
		}
		if raw, ok := hit["points_cost"]; ok {
			var v float64
			if json.Unmarshal(raw, &v) == nil {
				doc.PointsCost = int(v)
			}
		}
		if raw, ok := hit["available"]; ok {
			var v bool
			if json.Unmarshal(raw, &v) == nil {
				doc.Available = v
			}
		}
		if raw, ok := hit["in_stock"]; ok {
			var v bool
			if json.Unmarshal(raw, &v) == nil {
				doc.InStock = v
			}
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func strPtr(s string) *string {
	return &s
}
