package feedback

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

const responseColumns = `
	r.id, r.question_id, r.course_id, r.giver, r.recipient,
	r.giver_section, r.recipient_section, r.answer, r.rank_answer,
	r.created_at, r.updated_at,
	q.id, q.course_id, q.question_type, q.giver_type, q.recipient_type,
	q.created_at, q.updated_at`

// GetResponsesFromGiver retrieves all responses given by the participant in
// the course, with their questions attached.
func (r *PostgresRepository) GetResponsesFromGiver(ctx context.Context, courseID, giver string) ([]Response, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM feedback_responses r
		JOIN feedback_questions q ON q.id = r.question_id
		WHERE r.course_id = $1 AND r.giver = $2
		ORDER BY r.created_at ASC`, responseColumns)

	return r.scanResponses(ctx, query, courseID, giver)
}

// GetResponsesForRecipient retrieves all responses received by the
// participant in the course, with their questions attached.
func (r *PostgresRepository) GetResponsesForRecipient(ctx context.Context, courseID, recipient string) ([]Response, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM feedback_responses r
		JOIN feedback_questions q ON q.id = r.question_id
		WHERE r.course_id = $1 AND r.recipient = $2
		ORDER BY r.created_at ASC`, responseColumns)

	return r.scanResponses(ctx, query, courseID, recipient)
}

// GetResponsesForQuestion retrieves all responses answering the question.
func (r *PostgresRepository) GetResponsesForQuestion(ctx context.Context, questionID uuid.UUID) ([]Response, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM feedback_responses r
		JOIN feedback_questions q ON q.id = r.question_id
		WHERE r.question_id = $1
		ORDER BY r.created_at ASC`, responseColumns)

	return r.scanResponses(ctx, query, questionID)
}

// GetRankRecipientQuestions retrieves the rank-recipients questions of a course.
func (r *PostgresRepository) GetRankRecipientQuestions(ctx context.Context, courseID string) ([]Question, error) {
	query := `
		SELECT id, course_id, question_type, giver_type, recipient_type, created_at, updated_at
		FROM feedback_questions
		WHERE course_id = $1 AND question_type = $2
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, courseID, QuestionRankRecipients)
	if err != nil {
		return nil, fmt.Errorf("listing rank recipient questions: %w", err)
	}
	defer rows.Close()

	var questions []Question
	for rows.Next() {
		var q Question
		err := rows.Scan(&q.ID, &q.CourseID, &q.QuestionType, &q.GiverType, &q.RecipientType, &q.CreatedAt, &q.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning question row: %w", err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating question rows: %w", err)
	}

	return questions, nil
}

// UpdateResponseGiver rewrites the giver email of a single response.
func (r *PostgresRepository) UpdateResponseGiver(ctx context.Context, responseID uuid.UUID, giver string) error {
	return r.updateResponseField(ctx, responseID, "giver", giver)
}

// UpdateResponseRecipient rewrites the recipient email of a single response.
func (r *PostgresRepository) UpdateResponseRecipient(ctx context.Context, responseID uuid.UUID, recipient string) error {
	return r.updateResponseField(ctx, responseID, "recipient", recipient)
}

// UpdateResponseRank rewrites the rank answer of a single response.
func (r *PostgresRepository) UpdateResponseRank(ctx context.Context, responseID uuid.UUID, rank int) error {
	query := `UPDATE feedback_responses SET rank_answer = $1, updated_at = NOW() WHERE id = $2`

	result, err := r.pool.Exec(ctx, query, rank, responseID)
	if err != nil {
		return fmt.Errorf("updating response rank: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrResponseNotFound
	}
	return nil
}

// UpdateResponseEmails rewrites every giver and recipient reference to the
// old email within the course.
func (r *PostgresRepository) UpdateResponseEmails(ctx context.Context, courseID, oldEmail, newEmail string) error {
	giverQuery := `
		UPDATE feedback_responses SET giver = $1, updated_at = NOW()
		WHERE course_id = $2 AND giver = $3`
	if _, err := r.pool.Exec(ctx, giverQuery, newEmail, courseID, oldEmail); err != nil {
		return fmt.Errorf("updating response givers: %w", err)
	}

	recipientQuery := `
		UPDATE feedback_responses SET recipient = $1, updated_at = NOW()
		WHERE course_id = $2 AND recipient = $3`
	if _, err := r.pool.Exec(ctx, recipientQuery, newEmail, courseID, oldEmail); err != nil {
		return fmt.Errorf("updating response recipients: %w", err)
	}

	return nil
}

// UpdateGiverSection relabels the giver section of every response given by
// the participant in the course.
func (r *PostgresRepository) UpdateGiverSection(ctx context.Context, courseID, giver, sectionName string) error {
	query := `
		UPDATE feedback_responses SET giver_section = $1, updated_at = NOW()
		WHERE course_id = $2 AND giver = $3`

	if _, err := r.pool.Exec(ctx, query, sectionName, courseID, giver); err != nil {
		return fmt.Errorf("updating giver sections: %w", err)
	}
	return nil
}

// UpdateRecipientSection relabels the recipient section of every response
// received by the participant in the course.
func (r *PostgresRepository) UpdateRecipientSection(ctx context.Context, courseID, recipient, sectionName string) error {
	query := `
		UPDATE feedback_responses SET recipient_section = $1, updated_at = NOW()
		WHERE course_id = $2 AND recipient = $3`

	if _, err := r.pool.Exec(ctx, query, sectionName, courseID, recipient); err != nil {
		return fmt.Errorf("updating recipient sections: %w", err)
	}
	return nil
}

// DeleteResponse removes a single response and its comments.
func (r *PostgresRepository) DeleteResponse(ctx context.Context, responseID uuid.UUID) error {
	commentQuery := `DELETE FROM feedback_response_comments WHERE response_id = $1`
	if _, err := r.pool.Exec(ctx, commentQuery, responseID); err != nil {
		return fmt.Errorf("deleting response comments: %w", err)
	}

	query := `DELETE FROM feedback_responses WHERE id = $1`
	if _, err := r.pool.Exec(ctx, query, responseID); err != nil {
		return fmt.Errorf("deleting response: %w", err)
	}
	return nil
}

// DeleteResponsesForParticipant removes all responses given or received by
// the participant (an email address or team name) in the course, comments
// first.
func (r *PostgresRepository) DeleteResponsesForParticipant(ctx context.Context, courseID, participant string) error {
	commentQuery := `
		DELETE FROM feedback_response_comments
		WHERE response_id IN (
			SELECT id FROM feedback_responses
			WHERE course_id = $1 AND (giver = $2 OR recipient = $2)
		)`
	if _, err := r.pool.Exec(ctx, commentQuery, courseID, participant); err != nil {
		return fmt.Errorf("deleting participant response comments: %w", err)
	}

	query := `
		DELETE FROM feedback_responses
		WHERE course_id = $1 AND (giver = $2 OR recipient = $2)`
	if _, err := r.pool.Exec(ctx, query, courseID, participant); err != nil {
		return fmt.Errorf("deleting participant responses: %w", err)
	}
	return nil
}

// UpdateCommentEmails rewrites comment giver and last-editor references to
// the old email within the course.
func (r *PostgresRepository) UpdateCommentEmails(ctx context.Context, courseID, oldEmail, newEmail string) error {
	giverQuery := `
		UPDATE feedback_response_comments SET giver_email = $1, updated_at = NOW()
		WHERE course_id = $2 AND giver_email = $3`
	if _, err := r.pool.Exec(ctx, giverQuery, newEmail, courseID, oldEmail); err != nil {
		return fmt.Errorf("updating comment givers: %w", err)
	}

	editorQuery := `
		UPDATE feedback_response_comments SET last_editor_email = $1, updated_at = NOW()
		WHERE course_id = $2 AND last_editor_email = $3`
	if _, err := r.pool.Exec(ctx, editorQuery, newEmail, courseID, oldEmail); err != nil {
		return fmt.Errorf("updating comment editors: %w", err)
	}

	return nil
}

func (r *PostgresRepository) updateResponseField(ctx context.Context, responseID uuid.UUID, column, value string) error {
	query := fmt.Sprintf(`UPDATE feedback_responses SET %s = $1, updated_at = NOW() WHERE id = $2`, column)

	result, err := r.pool.Exec(ctx, query, value, responseID)
	if err != nil {
		return fmt.Errorf("updating response %s: %w", column, err)
	}
	if result.RowsAffected() == 0 {
		return ErrResponseNotFound
	}
	return nil
}

func (r *PostgresRepository) scanResponses(ctx context.Context, query string, args ...any) ([]Response, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing responses: %w", err)
	}
	defer rows.Close()

	var responses []Response
	for rows.Next() {
		resp, err := scanResponseRow(rows)
		if err != nil {
			return nil, err
		}
		responses = append(responses, *resp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating response rows: %w", err)
	}

	return responses, nil
}

func scanResponseRow(row pgx.Row) (*Response, error) {
	var resp Response
	var q Question
	err := row.Scan(
		&resp.ID, &resp.QuestionID, &resp.CourseID, &resp.Giver, &resp.Recipient,
		&resp.GiverSection, &resp.RecipientSection, &resp.Answer, &resp.RankAnswer,
		&resp.CreatedAt, &resp.UpdatedAt,
		&q.ID, &q.CourseID, &q.QuestionType, &q.GiverType, &q.RecipientType,
		&q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scanning response row: %w", err)
	}
	resp.Question = &q
	return &resp, nil
}
