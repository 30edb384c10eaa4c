// Package handshake implements the one-time group login: the bot opens a
// two-seat group, the user joins it, and the user's account is identified as
// the member that is not the bot.
package handshake

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"yptstats/backend/models"
	"yptstats/backend/ypt"
)

const (
	groupNamePrefix = "ypt stats"
	groupCapacity   = 2 // bot + invitee

	DefaultPollInterval   = 2 * time.Second
	defaultCleanupTimeout = 10 * time.Second
	defaultSweepLimit     = 8
)

// ErrTimeout is returned by WaitForMember when its context ends before a
// member joins.
var ErrTimeout = errors.New("timed out waiting for a member to join")

// ProtocolError means the group's membership can never produce a user.
type ProtocolError struct {
	GroupID int64
	Reason  string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("group %d: %s", e.GroupID, e.Reason)
}

// StudyService is the part of the study-service API the handshake needs.
// It is satisfied by *ypt.Client.
type StudyService interface {
	CreateGroup(ctx context.Context, opts ypt.CreateGroupRequest) (int64, error)
	DeleteGroup(ctx context.Context, groupID int64) error
	ListGroupMembers(ctx context.Context, groupID int64) ([]models.Member, error)
	ListGroups(ctx context.Context) ([]int64, error)
	CreateShortInviteLink(ctx context.Context, groupID int64) (string, error)
	SetInviteInfo(ctx context.Context, groupID int64, link string) error
}

// DeleteMode selects whether DeleteAllGroups waits for its deletions.
type DeleteMode int

const (
	DeleteAwait DeleteMode = iota
	DeleteBackground
)

type Service struct {
	client         StudyService
	botID          int64
	notice         string
	publishInvite  bool
	pollInterval   time.Duration
	cleanupTimeout time.Duration
	sweepLimit     int
	logger         logrus.FieldLogger
	statsd         *statsd.Client
}

type Option func(*Service)

func WithPollInterval(d time.Duration) Option {
	return func(s *Service) {
		s.pollInterval = d
	}
}

// WithNotice sets the notice shown on created groups.
func WithNotice(notice string) Option {
	return func(s *Service) {
		s.notice = notice
	}
}

// WithPublishInvite also writes the short link onto the group's invite page.
func WithPublishInvite(v bool) Option {
	return func(s *Service) {
		s.publishInvite = v
	}
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithStatsd(client *statsd.Client) Option {
	return func(s *Service) {
		s.statsd = client
	}
}

func NewService(client StudyService, botID int64, opts ...Option) *Service {
	s := &Service{
		client:         client,
		botID:          botID,
		notice:         "ypt-stats.deno.dev",
		pollInterval:   DefaultPollInterval,
		cleanupTimeout: defaultCleanupTimeout,
		sweepLimit:     defaultSweepLimit,
		logger:         logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateOneTimeGroup creates a password-protected group with room for the bot
// and one invitee, and returns it with a shareable invite link.
func (s *Service) CreateOneTimeGroup(ctx context.Context) (models.Group, error) {
	// The password only keeps strangers from wandering in; it is not a secret.
	name := fmt.Sprintf("%s [%d]", groupNamePrefix, 10+rand.IntN(90))
	password := strconv.Itoa(1000 + rand.IntN(9000))

	groupID, err := s.client.CreateGroup(ctx, ypt.CreateGroupRequest{
		Title:          name,
		Notice:         s.notice,
		GoalTime:       0,
		Password:       password,
		MaxMemberCount: groupCapacity,
	})
	if err != nil {
		return models.Group{}, fmt.Errorf("failed to create group: %w", err)
	}
	log := s.logger.WithField("group_id", groupID)

	link, err := s.client.CreateShortInviteLink(ctx, groupID)
	if err != nil {
		s.deleteGroup(context.WithoutCancel(ctx), groupID, "invite link failed")
		return models.Group{}, fmt.Errorf("failed to create invite link for group %d: %w", groupID, err)
	}

	if s.publishInvite {
		if err := s.client.SetInviteInfo(ctx, groupID, link); err != nil {
			log.WithError(err).Warn("failed to publish invite link")
		}
	}

	log.Info("created one-time group")
	s.incr("yptstats.handshake.created")
	return models.Group{ID: groupID, Name: name, Password: password, Link: link}, nil
}

// WaitForMember polls the group until a second member joins, deletes the
// group and returns that member. Polls run one at a time, pollInterval apart,
// until ctx ends.
func (s *Service) WaitForMember(ctx context.Context, groupID int64) (models.User, error) {
	log := s.logger.WithField("group_id", groupID)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return models.User{}, s.abandon(ctx, groupID)
		case <-timer.C:
		}

		members, err := s.client.ListGroupMembers(ctx, groupID)
		if err != nil {
			if ctx.Err() != nil {
				return models.User{}, s.abandon(ctx, groupID)
			}
			return models.User{}, fmt.Errorf("failed to list members of group %d: %w", groupID, err)
		}

		// The bot never leaves its own groups, so an empty list means the
		// group is gone and nobody can join it any more.
		if len(members) == 0 {
			return models.User{}, &ProtocolError{GroupID: groupID, Reason: "group no longer exists"}
		}
		if len(members) < groupCapacity {
			timer.Reset(s.pollInterval)
			continue
		}

		member, ok := lo.Find(members, func(m models.Member) bool {
			return m.UserID != s.botID
		})
		if !ok {
			return models.User{}, &ProtocolError{GroupID: groupID, Reason: "no member other than the bot"}
		}

		s.deleteGroup(ctx, groupID, "member identified")
		log.WithField("user_id", member.UserID).Info("identified group member")
		s.incr("yptstats.handshake.identified")
		return models.User{ID: member.UserID, Name: member.Name}, nil
	}
}

// abandon deletes a group whose wait was cancelled and returns the timeout error.
func (s *Service) abandon(ctx context.Context, groupID int64) error {
	s.deleteGroup(context.WithoutCancel(ctx), groupID, "wait cancelled")
	s.incr("yptstats.handshake.timeout")
	return fmt.Errorf("group %d: %w: %v", groupID, ErrTimeout, ctx.Err())
}

// DeleteAllGroups deletes every group owned by the bot and returns how many
// deletions were attempted. Individual failures are logged; leftovers are
// picked up by the next sweep.
func (s *Service) DeleteAllGroups(ctx context.Context, mode DeleteMode) (int, error) {
	ids, err := s.client.ListGroups(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list groups: %w", err)
	}

	switch mode {
	case DeleteBackground:
		detached := context.WithoutCancel(ctx)
		for _, id := range ids {
			go s.deleteGroup(detached, id, "sweep")
		}
	default:
		var g errgroup.Group
		g.SetLimit(s.sweepLimit)
		for _, id := range ids {
			g.Go(func() error {
				s.deleteGroup(ctx, id, "sweep")
				return nil
			})
		}
		_ = g.Wait()
	}

	s.logger.WithField("count", len(ids)).Info("swept groups")
	if s.statsd != nil {
		s.statsd.Count("yptstats.groups.swept", int64(len(ids)), []string{}, 1.0)
	}
	return len(ids), nil
}

// deleteGroup deletes a group and only logs a failure. Orphaned groups are
// removed by DeleteAllGroups.
func (s *Service) deleteGroup(ctx context.Context, groupID int64, reason string) {
	ctx, cancel := context.WithTimeout(ctx, s.cleanupTimeout)
	defer cancel()

	if err := s.client.DeleteGroup(ctx, groupID); err != nil {
		s.logger.WithFields(logrus.Fields{
			"group_id": groupID,
			"reason":   reason,
		}).WithError(err).Warn("failed to delete group")
	}
}

func (s *Service) incr(name string) {
	if s.statsd != nil {
		s.statsd.Incr(name, []string{}, 1.0)
	}
}
