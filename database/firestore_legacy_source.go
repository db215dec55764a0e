package database

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"nerdfootball/logging"
	"nerdfootball/metrics"
	"nerdfootball/models"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestorePaths locates the legacy collections.
//
//	Games:    {Games}/{week}                       one document per week, a map of game id -> game
//	Picks:    {Picks}/{week}/submissions/{userId}   game id -> {winner|team, confidence}
//	Survivor: {Survivor}/{userId}                   {picks: {week: {team}}}
type FirestorePaths struct {
	Games    string
	Picks    string
	Survivor string
}

// FirestoreLegacySource reads games and picks from the original hosted document store.
// The legacy store holds a single season, so the season argument is stamped onto records
// rather than used as a filter.
type FirestoreLegacySource struct {
	client *firestore.Client
	paths  FirestorePaths
	logger *logging.Logger
}

func NewFirestoreLegacySource(ctx context.Context, projectID string, paths FirestorePaths) (*FirestoreLegacySource, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client for %s: %w", projectID, err)
	}
	return &FirestoreLegacySource{
		client: client,
		paths:  paths,
		logger: logging.WithPrefix("FirestoreLegacy"),
	}, nil
}

func (s *FirestoreLegacySource) Close() error {
	return s.client.Close()
}

// GetWeekGames returns the normalized games stored in the week document
func (s *FirestoreLegacySource) GetWeekGames(ctx context.Context, season, week int) ([]models.Game, error) {
	ctx, cancel := withTimeout(ctx, MediumTimeout)
	defer cancel()

	snap, err := s.client.Collection(s.paths.Games).Doc(strconv.Itoa(week)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return []models.Game{}, nil
		}
		return nil, fmt.Errorf("failed to read legacy games for week %d: %w", week, err)
	}
	return s.gamesFromWeekDoc(snap.Data(), season, week), nil
}

// GetSeasonGames reads every week document under the games collection
func (s *FirestoreLegacySource) GetSeasonGames(ctx context.Context, season int) ([]models.Game, error) {
	ctx, cancel := withTimeout(ctx, LongTimeout)
	defer cancel()

	iter := s.client.Collection(s.paths.Games).Documents(ctx)
	defer iter.Stop()

	var games []models.Game
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate legacy games: %w", err)
		}
		week, err := strconv.Atoi(snap.Ref.ID)
		if err != nil || week <= 0 {
			s.logger.Debugf("Ignoring non-week games document %q", snap.Ref.ID)
			continue
		}
		games = append(games, s.gamesFromWeekDoc(snap.Data(), season, week)...)
	}

	sort.SliceStable(games, func(i, j int) bool {
		if games[i].Week != games[j].Week {
			return games[i].Week < games[j].Week
		}
		return games[i].ID < games[j].ID
	})
	return games, nil
}

func (s *FirestoreLegacySource) gamesFromWeekDoc(data map[string]interface{}, season, week int) []models.Game {
	games := make([]models.Game, 0, len(data))
	for gameID, v := range data {
		entry, ok := asMap(v)
		if !ok {
			continue
		}
		game, notes, err := NormalizeGame(entry, gameID, season, week)
		for _, note := range notes {
			s.logger.Warnf("week %d: %s", week, note)
		}
		if err != nil {
			metrics.RecordNormalizationReject("game")
			s.logger.Errorf("week %d: skipping legacy game: %v", week, err)
			continue
		}
		games = append(games, game)
	}
	sort.Slice(games, func(i, j int) bool { return games[i].ID < games[j].ID })
	return games
}

// GetWeekPicks reads every submission for the week
func (s *FirestoreLegacySource) GetWeekPicks(ctx context.Context, season, week int) (models.WeekPicks, error) {
	ctx, cancel := withTimeout(ctx, MediumTimeout)
	defer cancel()

	iter := s.client.Collection(s.paths.Picks).Doc(strconv.Itoa(week)).Collection("submissions").Documents(ctx)
	defer iter.Stop()

	picks := make(models.WeekPicks)
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate legacy picks for week %d: %w", week, err)
		}
		userID, userPicks, notes := NormalizeConfidencePicks(snap.Data(), snap.Ref.ID, season, week)
		for _, note := range notes {
			s.logger.Warnf("week %d: %s", week, note)
		}
		picks[userID] = userPicks
	}
	return picks, nil
}

// ListSurvivorUsers returns the ids of every survivor pick document
func (s *FirestoreLegacySource) ListSurvivorUsers(ctx context.Context, season int) ([]string, error) {
	ctx, cancel := withTimeout(ctx, MediumTimeout)
	defer cancel()

	refs, err := s.client.Collection(s.paths.Survivor).DocumentRefs(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list legacy survivor users: %w", err)
	}
	users := make([]string, 0, len(refs))
	for _, ref := range refs {
		users = append(users, ref.ID)
	}
	sort.Strings(users)
	return users, nil
}

// GetSurvivorPickHistory reads a user's survivor document
func (s *FirestoreLegacySource) GetSurvivorPickHistory(ctx context.Context, season int, userID string) ([]models.SurvivorPick, error) {
	ctx, cancel := withTimeout(ctx, ShortTimeout)
	defer cancel()

	snap, err := s.client.Collection(s.paths.Survivor).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return []models.SurvivorPick{}, nil
		}
		return nil, fmt.Errorf("failed to read legacy survivor picks for %s: %w", userID, err)
	}

	_, picks, notes := NormalizeSurvivorPicks(snap.Data(), userID)
	for _, note := range notes {
		s.logger.Warnf("%s", note)
	}
	return picks, nil
}
