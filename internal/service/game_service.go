package service

import (
	"context"
	"errors"
	"time"

	"rps_link/internal/domain"
	"rps_link/internal/game"
	"rps_link/internal/logger"
	"rps_link/internal/repository"
)

var (
	ErrNotFound  = errors.New("game not found")
	ErrTransient = errors.New("storage temporarily unavailable")
)

// SubmitResult is what a guest gets back for a move. On ErrAlreadyPlayed
// and ErrGameResolved it carries the play that already stands.
type SubmitResult struct {
	Play     *domain.Play   `json:"play"`
	Outcome  domain.Outcome `json:"outcome"`
	PlayedAt time.Time      `json:"played_at"`
}

func newSubmitResult(p *domain.Play) *SubmitResult {
	if p == nil {
		return nil
	}
	return &SubmitResult{Play: p, Outcome: p.Outcome, PlayedAt: p.PlayedAt}
}

// GameService runs the game rules against a Store and tells a Notifier
// about every change it commits.
type GameService struct {
	store       repository.Store
	notifier    Notifier
	factory     *game.Factory
	defaultMode domain.GameMode
}

// NewGameService wires the service. notifier may be nil; defaultMode is used
// when a host does not pick one.
func NewGameService(store repository.Store, notifier Notifier, defaultMode domain.GameMode) *GameService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if !defaultMode.Valid() {
		defaultMode = domain.GameModeFeed
	}
	return &GameService{
		store:       store,
		notifier:    notifier,
		factory:     game.NewFactory(),
		defaultMode: defaultMode,
	}
}

func (s *GameService) CreateGame(ctx context.Context, hostID string, move domain.Move, comment string, mode domain.GameMode) (*domain.Game, error) {
	if err := s.requireUser(ctx, hostID); err != nil {
		return nil, err
	}
	if mode == "" {
		mode = s.defaultMode
	}

	g, err := s.factory.CreateGame(hostID, move, comment, mode)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateGame(ctx, g); err != nil {
		return nil, transient(err)
	}

	GamesCreated.WithLabelValues(string(g.Mode)).Inc()
	logger.WithContext(ctx).Info("game created", "game_id", g.ID, "host_id", hostID, "mode", g.Mode)
	return g, nil
}

func (s *GameService) GetGame(ctx context.Context, id string) (*domain.Game, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	g, err := s.store.GetGame(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, transient(err)
	}
	return g, nil
}

// SubmitMove records guestID's move on the game. The outcome is computed
// once here and stored with the play. A second submission by the same guest
// returns the stored play with ErrAlreadyPlayed and changes nothing.
func (s *GameService) SubmitMove(ctx context.Context, gameID, guestID string, move domain.Move) (*SubmitResult, error) {
	log := logger.WithContext(ctx).With("game_id", gameID, "guest_id", guestID)

	if !move.Valid() {
		SubmitRejected.WithLabelValues(rejectReason(game.ErrInvalidMove)).Inc()
		return nil, game.ErrInvalidMove
	}
	g, err := s.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if err := s.requireUser(ctx, guestID); err != nil {
		return nil, err
	}

	p, err := s.factory.Play(g, guestID, move)
	if err != nil {
		return s.rejected(ctx, g.ID, guestID, p, err)
	}

	if err := s.store.AppendPlay(ctx, p); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicatePlay), errors.Is(err, repository.ErrPlayRejected):
			// lost a race: re-read and explain with the fresh state
			fresh, ferr := s.GetGame(ctx, gameID)
			if ferr != nil {
				return nil, ferr
			}
			existing, cerr := game.CheckPlayable(fresh, guestID, move)
			if cerr == nil {
				log.Error("store refused a play the rules accept", "error", err)
				return nil, transient(err)
			}
			return s.rejected(ctx, g.ID, guestID, existing, cerr)
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrNotFound
		default:
			return nil, transient(err)
		}
	}

	s.rememberGuestGame(ctx, guestID, g.ID)

	PlaysRecorded.WithLabelValues(string(p.Outcome)).Inc()
	log.Info("play recorded", "outcome", p.Outcome)
	s.notifier.Publish(GameEvent{
		Type:    EventPlayRecorded,
		GameID:  g.ID,
		GuestID: guestID,
		Plays:   len(g.Plays),
		At:      p.PlayedAt,
	})

	return newSubmitResult(p), nil
}

func (s *GameService) rejected(ctx context.Context, gameID, guestID string, existing *domain.Play, err error) (*SubmitResult, error) {
	SubmitRejected.WithLabelValues(rejectReason(err)).Inc()
	if errors.Is(err, game.ErrAlreadyPlayed) {
		// heals a guest list entry lost after an earlier successful play
		s.rememberGuestGame(ctx, guestID, gameID)
	}
	return newSubmitResult(existing), err
}

func (s *GameService) rememberGuestGame(ctx context.Context, guestID, gameID string) {
	if err := s.store.AddGuestGame(ctx, guestID, gameID); err != nil {
		logger.WithContext(ctx).Warn("failed to add game to guest list", "game_id", gameID, "guest_id", guestID, "error", err)
	}
}

// ArchiveGame closes a game for new plays. Only the host may archive;
// archiving twice is a no-op.
func (s *GameService) ArchiveGame(ctx context.Context, gameID, actorID string) (*domain.Game, error) {
	g, err := s.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	changed, err := s.factory.Archive(g, actorID)
	if err != nil {
		return nil, err
	}
	if !changed {
		return g, nil
	}

	stored, err := s.store.SetArchived(ctx, g.ID, *g.ArchivedAt)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, transient(err)
	}
	if !stored {
		// archived concurrently; report what the store holds
		return s.GetGame(ctx, gameID)
	}

	GamesArchived.Inc()
	logger.WithContext(ctx).Info("game archived", "game_id", g.ID)
	s.notifier.Publish(GameEvent{
		Type:   EventGameArchived,
		GameID: g.ID,
		Plays:  len(g.Plays),
		At:     *g.ArchivedAt,
	})
	return g, nil
}

// GameView loads a game and projects it for viewerID.
func (s *GameService) GameView(ctx context.Context, gameID, viewerID string) (*GameView, error) {
	g, err := s.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	ids := []string{g.HostID}
	if game.RoleOf(g, viewerID) == game.RoleHost {
		for _, p := range g.Plays {
			ids = append(ids, p.GuestID)
		}
	}
	v := View(g, viewerID, s.displayNames(ctx, ids))
	return &v, nil
}

// Dashboard lists the games viewerID hosts and the games they played as a
// guest, each classified and sorted live-first, newest-first.
func (s *GameService) Dashboard(ctx context.Context, viewerID string) (*Dashboard, error) {
	hosted, err := s.store.ListHostGames(ctx, viewerID, repository.DefaultListLimit)
	if err != nil {
		return nil, transient(err)
	}
	joined, err := s.store.ListGuestGames(ctx, viewerID, repository.DefaultListLimit)
	if err != nil {
		return nil, transient(err)
	}

	game.SortForDashboard(hosted)
	game.SortForDashboard(joined)

	ids := make([]string, 0, len(joined)+1)
	ids = append(ids, viewerID)
	for _, g := range joined {
		ids = append(ids, g.HostID)
	}
	return buildDashboard(viewerID, hosted, joined, s.displayNames(ctx, ids)), nil
}

// displayNames resolves user ids to names. Lookups that fail fall back to
// the default name.
func (s *GameService) displayNames(ctx context.Context, ids []string) map[string]string {
	names := make(map[string]string, len(ids))
	for _, id := range ids {
		if _, ok := names[id]; ok || id == "" {
			continue
		}
		names[id] = domain.DefaultDisplayName
		u, err := s.store.GetUser(ctx, id)
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				logger.WithContext(ctx).Warn("display name lookup failed", "user_id", id, "error", err)
			}
			continue
		}
		names[id] = u.DisplayName
	}
	return names
}

func (s *GameService) requireUser(ctx context.Context, id string) error {
	if id == "" {
		return ErrUnknownUser
	}
	_, err := s.store.GetUser(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUnknownUser
	}
	if err != nil {
		return transient(err)
	}
	return nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, game.ErrInvalidMove):
		return "invalid_move"
	case errors.Is(err, game.ErrAlreadyPlayed):
		return "already_played"
	case errors.Is(err, game.ErrGameResolved):
		return "resolved"
	case errors.Is(err, game.ErrGameArchived):
		return "archived"
	case errors.Is(err, game.ErrHostCannotPlay):
		return "host"
	}
	return "other"
}
