package casefile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// HistoryView is the read model served to the conversation endpoints: the
// full ordered exchange plus the last fact snapshot.
type HistoryView struct {
	CaseID      string   `json:"caseId"`
	Turns       []Turn   `json:"conversation"`
	LastFacts   []string `json:"ucs"`
	LastScore   float64  `json:"score"`
	IsCompleted bool     `json:"isCompleted"`
}

// Service provides the case/conversation read and maintenance operations
// around the intake core.
type Service struct {
	repo Repository
	log  zerolog.Logger
}

// NewService wires the case service.
func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With().Str("component", "casefile-service").Logger(),
	}
}

// CreateCase registers a case explicitly. The caseId is caller supplied here;
// implicit creation during an intake turn generates one instead.
func (s *Service) CreateCase(ctx context.Context, caseID, userAddress, title string) (*Case, error) {
	now := time.Now()
	c := &Case{
		CaseID:         caseID,
		UserAddress:    strings.ToLower(strings.TrimSpace(userAddress)),
		Title:          title,
		Agent:          AgentName,
		Status:         StatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
		LastActivityAt: now,
	}
	if err := s.repo.CreateCase(ctx, c); err != nil {
		return nil, fmt.Errorf("create case: %w", err)
	}
	return c, nil
}

// History returns the conversation plus the last UCS snapshot for a case.
// An unknown caseId yields an empty view rather than an error, matching the
// tolerant policy of the intake protocol.
func (s *Service) History(ctx context.Context, caseID string) (*HistoryView, error) {
	turns, err := s.repo.ListTurns(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("list turns: %w", err)
	}

	view := &HistoryView{CaseID: caseID, Turns: turns, LastFacts: []string{}}
	if last := LastTurn(turns); last != nil {
		view.LastFacts = last.Facts
		view.LastScore = last.Score
	}

	completed, err := s.IsCompleted(ctx, caseID)
	if err != nil {
		return nil, err
	}
	view.IsCompleted = completed
	return view, nil
}

// LastActiveHistory returns the conversation of the user's most recently
// active case, or nil when the user has no cases.
func (s *Service) LastActiveHistory(ctx context.Context, userAddress string) (*HistoryView, error) {
	c, err := s.repo.LastActiveCase(ctx, strings.ToLower(strings.TrimSpace(userAddress)))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("last active case: %w", err)
	}
	if c == nil {
		return nil, nil
	}
	return s.History(ctx, c.CaseID)
}

// UserCases lists the cases owned by a user address.
func (s *Service) UserCases(ctx context.Context, userAddress string) ([]*Case, error) {
	cases, err := s.repo.ListCasesByUser(ctx, strings.ToLower(strings.TrimSpace(userAddress)))
	if err != nil {
		return nil, fmt.Errorf("list user cases: %w", err)
	}
	return cases, nil
}

// IsCompleted reports whether the case reached the completed status.
// Unknown cases are simply not completed.
func (s *Service) IsCompleted(ctx context.Context, caseID string) (bool, error) {
	c, err := s.repo.FindCase(ctx, caseID)
	if err != nil {
		if IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("find case: %w", err)
	}
	return c.Status == StatusCompleted, nil
}

// DeleteCase removes a case together with its conversation history.
func (s *Service) DeleteCase(ctx context.Context, caseID string) error {
	if err := s.repo.DeleteCase(ctx, caseID); err != nil {
		return fmt.Errorf("delete case: %w", err)
	}
	s.log.Info().Str("case_id", caseID).Msg("case and conversation history deleted")
	return nil
}
