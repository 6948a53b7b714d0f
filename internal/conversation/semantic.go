package conversation

import (
	"context"
	"errors"

	"github.com/qdrant/go-client/qdrant"
)

const embeddingCollection = "conversations"

// SearchByEmbedding finds the chatbot's conversations closest to the query
// embedding. Substring search stays the contract for history filters; this
// powers the separate "similar conversations" lookup.
func (s *Store) SearchByEmbedding(ctx context.Context, chatbotID string, embedding []float32, limit int) ([]*Conversation, error) {
	if s.qdrant == nil {
		return nil, errors.New("qdrant client not configured")
	}

	results, err := s.qdrant.Query(ctx, &qdrant.QueryPoints{
		CollectionName: embeddingCollection,
		Query:          qdrant.NewQuery(embedding...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(results))
	for _, r := range results {
		if r.Id != nil {
			if uuid := r.Id.GetUuid(); uuid != "" {
				ids = append(ids, uuid)
			}
		}
	}

	if len(ids) == 0 {
		return []*Conversation{}, nil
	}

	var convs []*Conversation
	err = s.db.WithContext(ctx).
		Where("id IN ? AND chatbot_id = ?", ids, chatbotID).
		Find(&convs).Error
	return convs, err
}

func (s *Store) UpsertEmbedding(ctx context.Context, conversationID string, embedding []float32) error {
	if s.qdrant == nil {
		return errors.New("qdrant client not configured")
	}

	_, err := s.qdrant.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: embeddingCollection,
		Points: []*qdrant.PointStruct{
			{
				Id:      qdrant.NewID(conversationID),
				Vectors: qdrant.NewVectors(embedding...),
			},
		},
	})
	return err
}

func (s *Store) DeleteEmbedding(ctx context.Context, conversationID string) error {
	if s.qdrant == nil {
		return errors.New("qdrant client not configured")
	}

	_, err := s.qdrant.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: embeddingCollection,
		Points:         qdrant.NewPointsSelector(qdrant.NewID(conversationID)),
	})
	return err
}
