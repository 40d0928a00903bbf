package implementation

import (
	"context"
	"errors"

	"note-agent-be/internal/entity"
	"note-agent-be/internal/mapper"
	"note-agent-be/internal/model"
	"note-agent-be/internal/repository/contract"
	"note-agent-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type NoteEmbeddingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.NoteEmbeddingMapper
}

func NewNoteEmbeddingRepository(db *gorm.DB) contract.NoteEmbeddingRepository {
	return &NoteEmbeddingRepositoryImpl{
		db:     db,
		mapper: mapper.NewNoteEmbeddingMapper(),
	}
}

func (r *NoteEmbeddingRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *NoteEmbeddingRepositoryImpl) Create(ctx context.Context, embedding *entity.NoteEmbedding) error {
	m := r.mapper.ToModel(embedding)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*embedding = *r.mapper.ToEntity(m)
	return nil
}

func (r *NoteEmbeddingRepositoryImpl) CreateBulk(ctx context.Context, embeddings []*entity.NoteEmbedding) error {
	if len(embeddings) == 0 {
		return nil
	}
	models := make([]*model.NoteEmbedding, len(embeddings))
	for i, e := range embeddings {
		models[i] = r.mapper.ToModel(e)
	}
	if err := r.db.WithContext(ctx).Create(&models).Error; err != nil {
		return err
	}
	for i, m := range models {
		*embeddings[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *NoteEmbeddingRepositoryImpl) Update(ctx context.Context, embedding *entity.NoteEmbedding) error {
	m := r.mapper.ToModel(embedding)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*embedding = *r.mapper.ToEntity(m)
	return nil
}

func (r *NoteEmbeddingRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.NoteEmbedding{}, id).Error
}

func (r *NoteEmbeddingRepositoryImpl) DeleteByFileId(ctx context.Context, fileId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("file_id = ?", fileId).Delete(&model.NoteEmbedding{}).Error
}

func (r *NoteEmbeddingRepositoryImpl) DeleteBySpaceId(ctx context.Context, spaceId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("space_id = ?", spaceId).Delete(&model.NoteEmbedding{}).Error
}

func (r *NoteEmbeddingRepositoryImpl) DeleteAllByUserIdUnscoped(ctx context.Context, userId uuid.UUID) error {
	subQuery := r.db.Table("space_files").Select("id").Where("user_id = ?", userId)
	return r.db.WithContext(ctx).Unscoped().Where("file_id IN (?)", subQuery).Delete(&model.NoteEmbedding{}).Error
}

func (r *NoteEmbeddingRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.NoteEmbedding, error) {
	var m model.NoteEmbedding
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *NoteEmbeddingRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.NoteEmbedding, error) {
	var models []*model.NoteEmbedding
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *NoteEmbeddingRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.NoteEmbedding{}).Count(&count).Error
	return count, err
}

func (r *NoteEmbeddingRepositoryImpl) SearchSimilar(ctx context.Context, embedding []float32, limit int, spaceId uuid.UUID) ([]*entity.NoteEmbedding, error) {
	if limit <= 0 {
		limit = 5
	}
	var models []*model.NoteEmbedding

	// Cosine distance via pgvector: embedding_value <=> vector.
	// Join space_files so embeddings of soft-deleted files are excluded.
	err := r.db.WithContext(ctx).
		Joins("JOIN space_files ON space_files.id = note_embeddings.file_id").
		Where("note_embeddings.space_id = ?", spaceId).
		Where("note_embeddings.deleted_at IS NULL").
		Where("space_files.deleted_at IS NULL").
		Order(gorm.Expr("embedding_value <=> ?", pgvector.NewVector(embedding))).
		Limit(limit).
		Find(&models).Error

	if err != nil {
		return nil, err
	}

	return r.mapper.ToEntities(models), nil
}

// SearchSimilarWithScore returns embeddings with similarity scores, filtered by threshold
func (r *NoteEmbeddingRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, spaceId uuid.UUID, threshold float64) ([]*contract.ScoredNoteEmbedding, error) {
	if limit <= 0 {
		limit = 5
	}

	// Cosine distance in pgvector is 1 - cosine_similarity, so
	// 1 - (embedding_value <=> query_vector) recovers the similarity.
	type result struct {
		model.NoteEmbedding
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("note_embeddings").
		Select("note_embeddings.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Joins("JOIN space_files ON space_files.id = note_embeddings.file_id").
		Where("note_embeddings.space_id = ?", spaceId).
		Where("note_embeddings.deleted_at IS NULL").
		Where("space_files.deleted_at IS NULL").
		Where("1 - (embedding_value <=> ?) >= ?", queryVector, threshold).
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error

	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredNoteEmbedding, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredNoteEmbedding{
			Embedding:  r.mapper.ToEntity(&res.NoteEmbedding),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}
