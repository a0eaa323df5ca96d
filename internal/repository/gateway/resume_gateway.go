package gateway

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"resumevault/internal/domain"
	"resumevault/internal/repository"
)

// ResumeGateway реализует repository.Store поверх GraphQL-шлюза
type ResumeGateway struct {
	client *Client
}

func NewResumeGateway(client *Client) *ResumeGateway {
	return &ResumeGateway{client: client}
}

func (g *ResumeGateway) CreateResume(ctx context.Context, resume *domain.Resume) error {
	query := `
        mutation CreateResume($object: resumes_insert_input!) {
            insert_resumes_one(object: $object) {
                id created_at updated_at
            }
        }`

	var result struct {
		Inserted *domain.Resume `json:"insert_resumes_one"`
	}

	object := map[string]interface{}{
		"id":        resume.ID,
		"user_id":   resume.UserID,
		"title":     resume.Title,
		"content":   resume.Content,
		"file_key":  resume.FileKey,
		"version":   resume.Version,
		"is_active": resume.IsActive,
	}

	if err := g.client.Do(ctx, query, map[string]interface{}{"object": object}, &result); err != nil {
		return fmt.Errorf("failed to create resume via gateway: %w", err)
	}
	if result.Inserted == nil {
		return fmt.Errorf("gateway returned empty insert result")
	}

	resume.CreatedAt = result.Inserted.CreatedAt
	resume.UpdatedAt = result.Inserted.UpdatedAt

	return nil
}

func (g *ResumeGateway) GetResume(ctx context.Context, id uuid.UUID, userID string) (*domain.Resume, error) {
	query := `
        query GetResume($id: uuid!, $userId: String!) {
            resumes(where: {id: {_eq: $id}, user_id: {_eq: $userId}, is_active: {_eq: true}}, limit: 1) {
                id user_id title content file_key ai_feedback score version is_active created_at updated_at
            }
        }`

	var result struct {
		Resumes []domain.Resume `json:"resumes"`
	}

	vars := map[string]interface{}{"id": id, "userId": userID}
	if err := g.client.Do(ctx, query, vars, &result); err != nil {
		return nil, fmt.Errorf("failed to get resume via gateway: %w", err)
	}

	if len(result.Resumes) == 0 {
		return nil, repository.ErrNotFound
	}

	return &result.Resumes[0], nil
}

func (g *ResumeGateway) ListResumes(ctx context.Context, userID string) ([]domain.Resume, error) {
	query := `
        query ListResumes($userId: String!) {
            resumes(where: {user_id: {_eq: $userId}, is_active: {_eq: true}}, order_by: {updated_at: desc}) {
                id user_id title content file_key ai_feedback score version is_active created_at updated_at
            }
        }`

	var result struct {
		Resumes []domain.Resume `json:"resumes"`
	}

	if err := g.client.Do(ctx, query, map[string]interface{}{"userId": userID}, &result); err != nil {
		return nil, fmt.Errorf("failed to list resumes via gateway: %w", err)
	}

	return result.Resumes, nil
}

// ReplaceResumeFile выполняет два последовательных вызова: сначала вставка
// истории, потом обновление записи. Шлюз не дает транзакций между запросами,
// поэтому порядок выбран так, чтобы сбой между вызовами оставил лишнюю
// строку истории, а не потерянную версию
func (g *ResumeGateway) ReplaceResumeFile(ctx context.Context, resume *domain.Resume, snapshot *domain.ResumeHistory) error {
	historyQuery := `
        mutation InsertHistory($object: resume_history_insert_input!) {
            insert_resume_history_one(object: $object) {
                id created_at
            }
        }`

	historyObject := map[string]interface{}{
		"id":            snapshot.ID,
		"resume_id":     snapshot.ResumeID,
		"user_id":       snapshot.UserID,
		"title":         snapshot.Title,
		"content":       snapshot.Content,
		"file_key":      snapshot.FileKey,
		"ai_feedback":   snapshot.AIFeedback,
		"score":         snapshot.Score,
		"version":       snapshot.Version,
		"change_reason": snapshot.ChangeReason,
	}

	var historyResult struct {
		Inserted *domain.ResumeHistory `json:"insert_resume_history_one"`
	}

	if err := g.client.Do(ctx, historyQuery, map[string]interface{}{"object": historyObject}, &historyResult); err != nil {
		return fmt.Errorf("failed to insert history via gateway: %w", err)
	}

	// Условие version: {_eq: $expected} защищает от гонки двух параллельных
	// замен. Если версия уже ушла вперед, обновление не затронет ни одной
	// строки, а вставленный выше snapshot останется лишней строкой истории
	updateQuery := `
        mutation ReplaceFile($id: uuid!, $userId: String!, $fileKey: String!, $version: Int!, $expected: Int!) {
            update_resumes(
                where: {id: {_eq: $id}, user_id: {_eq: $userId}, is_active: {_eq: true}, version: {_eq: $expected}},
                _set: {file_key: $fileKey, version: $version, updated_at: "now()"}
            ) {
                affected_rows
            }
        }`

	var updateResult struct {
		Update struct {
			AffectedRows int `json:"affected_rows"`
		} `json:"update_resumes"`
	}

	vars := map[string]interface{}{
		"id":       resume.ID,
		"userId":   resume.UserID,
		"fileKey":  resume.FileKey,
		"version":  resume.Version,
		"expected": snapshot.Version,
	}

	if err := g.client.Do(ctx, updateQuery, vars, &updateResult); err != nil {
		return fmt.Errorf("failed to update resume via gateway: %w", err)
	}

	if updateResult.Update.AffectedRows == 0 {
		return repository.ErrVersionConflict
	}

	return nil
}

func (g *ResumeGateway) GetResumeHistory(ctx context.Context, resumeID uuid.UUID, userID string) ([]domain.ResumeHistory, error) {
	query := `
        query GetHistory($resumeId: uuid!, $userId: String!) {
            resume_history(where: {resume_id: {_eq: $resumeId}, user_id: {_eq: $userId}}, order_by: {version: desc}) {
                id resume_id user_id title content file_key ai_feedback score version change_reason created_at
            }
        }`

	var result struct {
		History []domain.ResumeHistory `json:"resume_history"`
	}

	vars := map[string]interface{}{"resumeId": resumeID, "userId": userID}
	if err := g.client.Do(ctx, query, vars, &result); err != nil {
		return nil, fmt.Errorf("failed to get history via gateway: %w", err)
	}

	return result.History, nil
}

func (g *ResumeGateway) SaveFeedback(ctx context.Context, id uuid.UUID, userID string, feedback string, score int) error {
	query := `
        mutation SaveFeedback($id: uuid!, $userId: String!, $feedback: String!, $score: Int!) {
            update_resumes(
                where: {id: {_eq: $id}, user_id: {_eq: $userId}, is_active: {_eq: true}},
                _set: {ai_feedback: $feedback, score: $score, updated_at: "now()"}
            ) {
                affected_rows
            }
        }`

	var result struct {
		Update struct {
			AffectedRows int `json:"affected_rows"`
		} `json:"update_resumes"`
	}

	vars := map[string]interface{}{"id": id, "userId": userID, "feedback": feedback, "score": score}
	if err := g.client.Do(ctx, query, vars, &result); err != nil {
		return fmt.Errorf("failed to save feedback via gateway: %w", err)
	}

	if result.Update.AffectedRows == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (g *ResumeGateway) SoftDeleteResume(ctx context.Context, id uuid.UUID, userID string) error {
	query := `
        mutation SoftDelete($id: uuid!, $userId: String!) {
            update_resumes(
                where: {id: {_eq: $id}, user_id: {_eq: $userId}, is_active: {_eq: true}},
                _set: {is_active: false, updated_at: "now()"}
            ) {
                affected_rows
            }
        }`

	var result struct {
		Update struct {
			AffectedRows int `json:"affected_rows"`
		} `json:"update_resumes"`
	}

	vars := map[string]interface{}{"id": id, "userId": userID}
	if err := g.client.Do(ctx, query, vars, &result); err != nil {
		return fmt.Errorf("failed to soft delete via gateway: %w", err)
	}

	if result.Update.AffectedRows == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// EnsureUser делает идемпотентный upsert через on_conflict. Когда email
// не передан, список update_columns пуст: вставка без email не должна
// затирать уже сохраненный адрес, как COALESCE в прямой реализации
func (g *ResumeGateway) EnsureUser(ctx context.Context, user *domain.User) error {
	updateColumns := "[email]"
	if user.Email == nil {
		updateColumns = "[]"
	}

	query := fmt.Sprintf(`
        mutation EnsureUser($object: users_insert_input!) {
            insert_users_one(
                object: $object,
                on_conflict: {constraint: users_pkey, update_columns: %s}
            ) {
                id
            }
        }`, updateColumns)

	object := map[string]interface{}{
		"id":    user.ID,
		"email": user.Email,
	}

	if err := g.client.Do(ctx, query, map[string]interface{}{"object": object}, nil); err != nil {
		return fmt.Errorf("failed to ensure user via gateway: %w", err)
	}

	return nil
}
