// Package service implements the registry operations: identifier allocation,
// ownership-gated mutation, soft deletion with cascade unlinking, and the
// reaction ledger. Every operation executes as one store unit of work; an
// error anywhere discards every write, so partial effects are never
// observable.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/genesisbarrios/senfiltro/internal/audit"
	"github.com/genesisbarrios/senfiltro/internal/registry/cache"
	"github.com/genesisbarrios/senfiltro/internal/registry/codec"
	"github.com/genesisbarrios/senfiltro/internal/registry/metrics"
	"github.com/genesisbarrios/senfiltro/internal/registry/models"
	"github.com/genesisbarrios/senfiltro/internal/registry/store"
	id "github.com/genesisbarrios/senfiltro/pkg/domain"
	dErrors "github.com/genesisbarrios/senfiltro/pkg/domain-errors"
	"github.com/genesisbarrios/senfiltro/pkg/platform/sentinel"
	"github.com/genesisbarrios/senfiltro/pkg/requestcontext"
)

// MaxCascadeCandidates caps the caller-supplied candidate list per delete.
// Completeness of unlinking is the caller's contract (there is no reverse
// index from post to comments); the cap only bounds the unit of work.
const MaxCascadeCandidates = 64

// Service orchestrates registry operations over the record store.
type Service struct {
	store   store.TxStore
	cache   *cache.PostCache
	audit   *audit.Recorder
	metrics *metrics.Metrics
	logger  *slog.Logger
	tracer  trace.Tracer
}

// Option configures the Service.
type Option func(*Service)

// WithCache sets the post read cache.
func WithCache(c *cache.PostCache) Option {
	return func(s *Service) { s.cache = c }
}

// WithAudit sets the audit recorder.
func WithAudit(r *audit.Recorder) Option {
	return func(s *Service) { s.audit = r }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// New constructs the registry service over the given record store.
func New(st store.TxStore, opts ...Option) (*Service, error) {
	if st == nil {
		return nil, errors.New("record store is required")
	}
	s := &Service{
		store:  st,
		logger: slog.Default(),
		tracer: otel.Tracer("senfiltro/registry"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// begin opens a span and returns a finish func that records duration and
// failure code for the operation.
func (s *Service) begin(ctx context.Context, op string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "registry."+op)
	return ctx, func(err error) {
		span.End()
		s.metrics.ObserveOperation(op, time.Since(start).Seconds())
		if err != nil {
			s.metrics.IncOperationErrors(op, string(dErrors.CodeOf(err)))
		}
	}
}

// InitializeCounters creates the post and comment counters at zero. It is
// safe to call repeatedly: a counter that already exists is left untouched,
// because resetting one that has issued ids would let ids be issued twice.
func (s *Service) InitializeCounters(ctx context.Context, caller id.Identity) (err error) {
	ctx, finish := s.begin(ctx, "initialize_counters")
	defer func() { finish(err) }()

	err = s.store.RunInTx(ctx, func(tx store.Store) error {
		for _, kind := range []models.CounterKind{models.CounterPosts, models.CounterComments} {
			_, getErr := tx.Get(ctx, counterKey(kind))
			if errors.Is(getErr, sentinel.ErrNotFound) {
				c := models.Counter{Kind: kind}
				if createErr := tx.Create(ctx, counterKey(kind), codec.EncodeCounter(c), codec.CounterSpace()); createErr != nil {
					return translate(createErr, "counter")
				}
				continue
			}
			if getErr != nil {
				return translate(getErr, "counter")
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.audit.Record(ctx, audit.Event{Action: audit.ActionCountersInit, Actor: caller.String()})
	return nil
}

// CreatePost allocates the next post id and creates an Active post owned by
// the caller.
func (s *Service) CreatePost(ctx context.Context, caller id.Identity, metadataCID string, aiGenerated bool) (post *models.Post, err error) {
	ctx, finish := s.begin(ctx, "create_post")
	defer func() { finish(err) }()

	if err = requireCaller(caller); err != nil {
		return nil, err
	}
	if err = models.ValidateMetadataCID(metadataCID); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx).Unix()

	err = s.store.RunInTx(ctx, func(tx store.Store) error {
		counter, txErr := readCounter(ctx, tx, models.CounterPosts)
		if txErr != nil {
			return txErr
		}
		p, txErr := models.NewPost(counter.Allocate(), caller, metadataCID, aiGenerated, now)
		if txErr != nil {
			return txErr
		}
		if txErr = tx.Create(ctx, codec.PostKey(p.ID), codec.EncodePost(p), codec.PostSpace(len(p.MetadataCID))); txErr != nil {
			return translate(txErr, "post")
		}
		if txErr = tx.Put(ctx, counterKey(counter.Kind), codec.EncodeCounter(*counter)); txErr != nil {
			return translate(txErr, "post counter")
		}
		post = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncPostsCreated()
	s.audit.Record(ctx, audit.Event{Action: audit.ActionPostCreated, Actor: caller.String(), Entity: "post", EntityID: post.ID})
	s.logger.InfoContext(ctx, "post created", "post_id", post.ID, "request_id", requestcontext.RequestID(ctx))
	return post, nil
}

// GetPost reads a post, serving from the cache when possible.
func (s *Service) GetPost(ctx context.Context, postID uint64) (post *models.Post, err error) {
	ctx, finish := s.begin(ctx, "get_post")
	defer func() { finish(err) }()

	if cached := s.cache.Get(ctx, postID); cached != nil {
		return cached, nil
	}
	post, err = readPost(ctx, s.store, postID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, post)
	return post, nil
}

// UpdatePost applies the provided fields to a post the caller owns.
func (s *Service) UpdatePost(ctx context.Context, caller id.Identity, postID uint64, metadataCID *string, aiGenerated *bool) (post *models.Post, err error) {
	ctx, finish := s.begin(ctx, "update_post")
	defer func() { finish(err) }()

	if err = requireCaller(caller); err != nil {
		return nil, err
	}
	if metadataCID != nil {
		if err = models.ValidateMetadataCID(*metadataCID); err != nil {
			return nil, err
		}
	}

	err = s.store.RunInTx(ctx, func(tx store.Store) error {
		p, txErr := readPost(ctx, tx, postID)
		if txErr != nil {
			return txErr
		}
		if txErr = p.Update(caller, metadataCID, aiGenerated); txErr != nil {
			return txErr
		}
		if txErr = tx.Put(ctx, codec.PostKey(p.ID), codec.EncodePost(p)); txErr != nil {
			return translate(txErr, "post")
		}
		post = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, postID)
	s.audit.Record(ctx, audit.Event{Action: audit.ActionPostUpdated, Actor: caller.String(), Entity: "post", EntityID: postID})
	return post, nil
}

// DeletePost soft-deletes a post the caller owns and unlinks the supplied
// candidate comments that reference it. Candidates the caller omits are not
// updated even if they reference the post; the endpoint documents this as the
// caller's contract.
func (s *Service) DeletePost(ctx context.Context, caller id.Identity, postID uint64, candidates []uint64) (err error) {
	ctx, finish := s.begin(ctx, "delete_post")
	defer func() { finish(err) }()

	if err = requireCaller(caller); err != nil {
		return err
	}
	if len(candidates) > MaxCascadeCandidates {
		return dErrors.New(dErrors.CodeBadRequest, "too many cascade candidates (max 64)")
	}

	err = s.store.RunInTx(ctx, func(tx store.Store) error {
		p, txErr := readPost(ctx, tx, postID)
		if txErr != nil {
			return txErr
		}
		if txErr = p.Delete(caller); txErr != nil {
			return txErr
		}
		if txErr = tx.Put(ctx, codec.PostKey(p.ID), codec.EncodePost(p)); txErr != nil {
			return translate(txErr, "post")
		}

		seen := make(map[uint64]struct{}, len(candidates))
		for _, commentID := range candidates {
			if _, dup := seen[commentID]; dup {
				continue
			}
			seen[commentID] = struct{}{}

			c, txErr := readComment(ctx, tx, commentID)
			if txErr != nil {
				return txErr
			}
			if !c.UnlinkParent(p.ID) {
				continue
			}
			if txErr = tx.Put(ctx, codec.CommentKey(c.ID), codec.EncodeComment(c)); txErr != nil {
				return translate(txErr, "comment")
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(ctx, postID)
	s.audit.Record(ctx, audit.Event{Action: audit.ActionPostDeleted, Actor: caller.String(), Entity: "post", EntityID: postID})
	s.logger.InfoContext(ctx, "post deleted", "post_id", postID, "candidates", len(candidates))
	return nil
}

// CreateComment allocates the next comment id and creates an Active comment.
// The parent post reference is stored as supplied; its existence is not
// checked, matching the registry's non-owning back-reference semantics.
func (s *Service) CreateComment(ctx context.Context, caller id.Identity, metadataCID string, parentPost *uint64) (comment *models.Comment, err error) {
	ctx, finish := s.begin(ctx, "create_comment")
	defer func() { finish(err) }()

	if err = requireCaller(caller); err != nil {
		return nil, err
	}
	if err = models.ValidateMetadataCID(metadataCID); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx).Unix()

	err = s.store.RunInTx(ctx, func(tx store.Store) error {
		counter, txErr := readCounter(ctx, tx, models.CounterComments)
		if txErr != nil {
			return txErr
		}
		c, txErr := models.NewComment(counter.Allocate(), caller, metadataCID, parentPost, now)
		if txErr != nil {
			return txErr
		}
		if txErr = tx.Create(ctx, codec.CommentKey(c.ID), codec.EncodeComment(c), codec.CommentSpace(len(c.MetadataCID))); txErr != nil {
			return translate(txErr, "comment")
		}
		if txErr = tx.Put(ctx, counterKey(counter.Kind), codec.EncodeCounter(*counter)); txErr != nil {
			return translate(txErr, "comment counter")
		}
		comment = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncCommentsCreated()
	s.audit.Record(ctx, audit.Event{Action: audit.ActionCommentCreated, Actor: caller.String(), Entity: "comment", EntityID: comment.ID})
	return comment, nil
}

// GetComment reads a comment.
func (s *Service) GetComment(ctx context.Context, commentID uint64) (comment *models.Comment, err error) {
	ctx, finish := s.begin(ctx, "get_comment")
	defer func() { finish(err) }()

	return readComment(ctx, s.store, commentID)
}

// UpdateComment applies the provided fields to a comment the caller owns.
func (s *Service) UpdateComment(ctx context.Context, caller id.Identity, commentID uint64, metadataCID *string) (comment *models.Comment, err error) {
	ctx, finish := s.begin(ctx, "update_comment")
	defer func() { finish(err) }()

	if err = requireCaller(caller); err != nil {
		return nil, err
	}
	if metadataCID != nil {
		if err = models.ValidateMetadataCID(*metadataCID); err != nil {
			return nil, err
		}
	}

	err = s.store.RunInTx(ctx, func(tx store.Store) error {
		c, txErr := readComment(ctx, tx, commentID)
		if txErr != nil {
			return txErr
		}
		if txErr = c.Update(caller, metadataCID); txErr != nil {
			return txErr
		}
		if txErr = tx.Put(ctx, codec.CommentKey(c.ID), codec.EncodeComment(c)); txErr != nil {
			return translate(txErr, "comment")
		}
		comment = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.Event{Action: audit.ActionCommentUpdated, Actor: caller.String(), Entity: "comment", EntityID: commentID})
	return comment, nil
}

// DeleteComment soft-deletes a comment the caller owns.
func (s *Service) DeleteComment(ctx context.Context, caller id.Identity, commentID uint64) (err error) {
	ctx, finish := s.begin(ctx, "delete_comment")
	defer func() { finish(err) }()

	if err = requireCaller(caller); err != nil {
		return err
	}

	err = s.store.RunInTx(ctx, func(tx store.Store) error {
		c, txErr := readComment(ctx, tx, commentID)
		if txErr != nil {
			return txErr
		}
		if txErr = c.Delete(caller); txErr != nil {
			return txErr
		}
		if txErr = tx.Put(ctx, codec.CommentKey(c.ID), codec.EncodeComment(c)); txErr != nil {
			return translate(txErr, "comment")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.audit.Record(ctx, audit.Event{Action: audit.ActionCommentDeleted, Actor: caller.String(), Entity: "comment", EntityID: commentID})
	return nil
}

// ReactToPost applies the caller's reaction to a post through the ledger. The
// ledger entry is found or created at a key derived from (post, caller), so a
// caller can never touch another user's reaction.
func (s *Service) ReactToPost(ctx context.Context, caller id.Identity, postID uint64, value int8) (post *models.Post, err error) {
	ctx, finish := s.begin(ctx, "react_to_post")
	defer func() { finish(err) }()

	if err = requireCaller(caller); err != nil {
		return nil, err
	}
	if !id.ValidReaction(value) {
		return nil, dErrors.New(dErrors.CodeInvalidReaction, "reaction must be -1, 0, or 1")
	}

	err = s.store.RunInTx(ctx, func(tx store.Store) error {
		p, txErr := readPost(ctx, tx, postID)
		if txErr != nil {
			return txErr
		}

		key := codec.ReactionKey(p.ID, caller)
		rec, getErr := tx.Get(ctx, key)

		var reaction *models.Reaction
		created := false
		switch {
		case errors.Is(getErr, sentinel.ErrNotFound):
			reaction = models.NewReaction(p.ID, caller)
			created = true
		case getErr != nil:
			return translate(getErr, "reaction")
		default:
			if reaction, txErr = codec.DecodeReaction(rec.Payload); txErr != nil {
				return translate(txErr, "reaction")
			}
			if txErr = reaction.CheckBinding(p.ID, caller); txErr != nil {
				return txErr
			}
		}

		if txErr = reaction.Apply(value, p); txErr != nil {
			return txErr
		}

		payload := codec.EncodeReaction(reaction)
		if created {
			txErr = tx.Create(ctx, key, payload, codec.ReactionSpace())
		} else {
			txErr = tx.Put(ctx, key, payload)
		}
		if txErr != nil {
			return translate(txErr, "reaction")
		}
		if txErr = tx.Put(ctx, codec.PostKey(p.ID), codec.EncodePost(p)); txErr != nil {
			return translate(txErr, "post")
		}
		post = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, postID)
	s.metrics.IncReactionsApplied(strconv.Itoa(int(value)))
	s.audit.Record(ctx, audit.Event{Action: audit.ActionReactionApplied, Actor: caller.String(), Entity: "post", EntityID: postID})
	return post, nil
}

func requireCaller(caller id.Identity) error {
	if caller.IsZero() {
		return dErrors.New(dErrors.CodeBadRequest, "caller identity is required")
	}
	return nil
}

func counterKey(kind models.CounterKind) []byte {
	if kind == models.CounterComments {
		return codec.CommentCounterKey()
	}
	return codec.PostCounterKey()
}

func readCounter(ctx context.Context, st store.Store, kind models.CounterKind) (*models.Counter, error) {
	rec, err := st.Get(ctx, counterKey(kind))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeInvariantViolation, "identifier counters are not initialized")
		}
		return nil, translate(err, "counter")
	}
	counter, err := codec.DecodeCounter(rec.Payload)
	if err != nil {
		return nil, translate(err, "counter")
	}
	if counter.Kind != kind {
		return nil, dErrors.New(dErrors.CodeInternal, "counter record kind mismatch")
	}
	return &counter, nil
}

func readPost(ctx context.Context, st store.Store, postID uint64) (*models.Post, error) {
	rec, err := st.Get(ctx, codec.PostKey(postID))
	if err != nil {
		return nil, translate(err, "post")
	}
	p, err := codec.DecodePost(rec.Payload)
	if err != nil {
		return nil, translate(err, "post")
	}
	return p, nil
}

func readComment(ctx context.Context, st store.Store, commentID uint64) (*models.Comment, error) {
	rec, err := st.Get(ctx, codec.CommentKey(commentID))
	if err != nil {
		return nil, translate(err, "comment")
	}
	c, err := codec.DecodeComment(rec.Payload)
	if err != nil {
		return nil, translate(err, "comment")
	}
	return c, nil
}

// translate maps store sentinel errors to domain errors at the service
// boundary.
func translate(err error, what string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(dErrors.CodeNotFound, what+" not found", err)
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(dErrors.CodeConflict, what+" already exists", err)
	case errors.Is(err, sentinel.ErrCapacityExceeded):
		return dErrors.Wrap(dErrors.CodeMetadataCidTooLong, what+" exceeds its reserved capacity", err)
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.Wrap(dErrors.CodeInternal, what+" record is corrupted", err)
	default:
		return dErrors.Wrap(dErrors.CodeInternal, what+" operation failed", err)
	}
}
