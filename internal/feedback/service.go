package feedback

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// Service exposes the response and comment maintenance operations the
// participant engine cascades into.
type Service struct {
	repo Repository
}

// NewService creates a new feedback Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ResponsesGivenBy returns the responses given by the participant in the
// course, with questions attached.
func (s *Service) ResponsesGivenBy(ctx context.Context, courseID, giverEmail string) ([]Response, error) {
	return s.repo.GetResponsesFromGiver(ctx, courseID, giverEmail)
}

// ResponsesReceivedBy returns the responses received by the participant in
// the course, with questions attached.
func (s *Service) ResponsesReceivedBy(ctx context.Context, courseID, recipientEmail string) ([]Response, error) {
	return s.repo.GetResponsesForRecipient(ctx, courseID, recipientEmail)
}

// UpdateResponseGiver rewrites the giver email of one response.
func (s *Service) UpdateResponseGiver(ctx context.Context, responseID uuid.UUID, email string) error {
	return s.repo.UpdateResponseGiver(ctx, responseID, email)
}

// UpdateResponseRecipient rewrites the recipient email of one response.
func (s *Service) UpdateResponseRecipient(ctx context.Context, responseID uuid.UUID, email string) error {
	return s.repo.UpdateResponseRecipient(ctx, responseID, email)
}

// UpdateResponsesForEmailChange rewrites every giver and recipient reference
// to the old email within the course.
func (s *Service) UpdateResponsesForEmailChange(ctx context.Context, courseID, oldEmail, newEmail string) error {
	return s.repo.UpdateResponseEmails(ctx, courseID, oldEmail, newEmail)
}

// UpdateResponsesForTeamChange removes the participant's responses that were
// addressed under a team-scoped question type. Those responses reference the
// old team and have no meaning once the participant moves, so they are
// deleted rather than rewritten. Rank-recipients responses for the course
// are renumbered afterwards.
func (s *Service) UpdateResponsesForTeamChange(ctx context.Context, courseID, email, oldTeam, newTeam string) error {
	given, err := s.repo.GetResponsesFromGiver(ctx, courseID, email)
	if err != nil {
		return fmt.Errorf("loading given responses: %w", err)
	}
	received, err := s.repo.GetResponsesForRecipient(ctx, courseID, email)
	if err != nil {
		return fmt.Errorf("loading received responses: %w", err)
	}

	for _, resp := range append(given, received...) {
		q := resp.Question
		if q == nil {
			continue
		}
		if q.GiverType.IsTeamScoped() || q.RecipientType.IsTeamScoped() {
			if err := s.repo.DeleteResponse(ctx, resp.ID); err != nil {
				return fmt.Errorf("deleting team-scoped response: %w", err)
			}
		}
	}

	// Responses addressed to the old team as a unit also reference the
	// departing participant's membership.
	if oldTeam != "" && oldTeam != newTeam {
		given, err := s.repo.GetResponsesFromGiver(ctx, courseID, email)
		if err != nil {
			return fmt.Errorf("loading remaining given responses: %w", err)
		}
		for _, resp := range given {
			if resp.Recipient == oldTeam {
				if err := s.repo.DeleteResponse(ctx, resp.ID); err != nil {
					return fmt.Errorf("deleting old-team response: %w", err)
				}
			}
		}
	}

	return s.RerankRecipientResponses(ctx, courseID)
}

// UpdateResponsesForSectionChange relabels the participant's responses with
// the new section name on the side the participant occupies.
func (s *Service) UpdateResponsesForSectionChange(ctx context.Context, courseID, email, sectionName string) error {
	if err := s.repo.UpdateGiverSection(ctx, courseID, email, sectionName); err != nil {
		return err
	}
	return s.repo.UpdateRecipientSection(ctx, courseID, email, sectionName)
}

// DeleteResponsesForParticipant removes every response the participant (an
// email address or a team name) gave or received in the course, along with
// their comments.
func (s *Service) DeleteResponsesForParticipant(ctx context.Context, courseID, participant string) error {
	return s.repo.DeleteResponsesForParticipant(ctx, courseID, participant)
}

// RerankRecipientResponses renumbers the rank answers of every
// rank-recipients question in the course so each giver's ranks are
// consecutive from 1 again. Required after a ranked participant disappears
// from the pool.
func (s *Service) RerankRecipientResponses(ctx context.Context, courseID string) error {
	questions, err := s.repo.GetRankRecipientQuestions(ctx, courseID)
	if err != nil {
		return fmt.Errorf("loading rank recipient questions: %w", err)
	}

	for _, q := range questions {
		responses, err := s.repo.GetResponsesForQuestion(ctx, q.ID)
		if err != nil {
			return fmt.Errorf("loading responses for question: %w", err)
		}

		byGiver := make(map[string][]Response)
		for _, resp := range responses {
			if resp.RankAnswer == nil {
				continue
			}
			byGiver[resp.Giver] = append(byGiver[resp.Giver], resp)
		}

		for _, group := range byGiver {
			sort.SliceStable(group, func(i, j int) bool {
				return *group[i].RankAnswer < *group[j].RankAnswer
			})
			for i, resp := range group {
				want := i + 1
				if *resp.RankAnswer == want {
					continue
				}
				if err := s.repo.UpdateResponseRank(ctx, resp.ID, want); err != nil {
					return fmt.Errorf("renumbering response rank: %w", err)
				}
			}
		}
	}

	return nil
}

// UpdateCommentEmails rewrites comment references to the old email within
// the course.
func (s *Service) UpdateCommentEmails(ctx context.Context, courseID, oldEmail, newEmail string) error {
	return s.repo.UpdateCommentEmails(ctx, courseID, oldEmail, newEmail)
}
