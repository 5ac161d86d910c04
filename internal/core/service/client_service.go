package service

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cabinet-comptable/backoffice/internal/api/metrics"
	"github.com/cabinet-comptable/backoffice/internal/core/authz"
	"github.com/cabinet-comptable/backoffice/internal/core/domain"
	"github.com/cabinet-comptable/backoffice/internal/core/ports"
)

// ClientDeps are the collaborators of ClientService. Notifier and Audit may be nil.
type ClientDeps struct {
	Repo     ports.ClientRepository
	Cache    ports.ClientListCache
	Guard    ports.MutationGuard
	Sealer   ports.SecretSealer
	Eval     *authz.Evaluator
	Notifier ports.Notifier
	Audit    ports.AuditRecorder
}

// ClientService implements ports.ClientService.
//
// Writes go to the store first; the list cache is invalidated only once the
// store acknowledged them. When invalidation fails the cache is marked dirty
// and bypassed until a later invalidation succeeds.
type ClientService struct {
	repo   ports.ClientRepository
	cache  ports.ClientListCache
	guard  ports.MutationGuard
	sealer ports.SecretSealer
	eval   *authz.Evaluator
	rec    recorder
	log    zerolog.Logger

	now   func() time.Time
	newID func() string

	dirty atomic.Bool
}

func NewClientService(d ClientDeps, log zerolog.Logger) *ClientService {
	return &ClientService{
		repo:   d.Repo,
		cache:  d.Cache,
		guard:  d.Guard,
		sealer: d.Sealer,
		eval:   d.Eval,
		rec:    newRecorder(d.Notifier, d.Audit, log),
		log:    log,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// List returns every client, newest first.
func (s *ClientService) List(ctx context.Context, actor domain.Identity) ([]*domain.Client, error) {
	if err := authorize(s.eval, actor, domain.ActionView, domain.EntityClient); err != nil {
		return nil, err
	}
	clients, err := s.list(ctx)
	if err != nil {
		return nil, err
	}
	return redactAll(clients), nil
}

// Search filters the list on the commercial and company names.
// Search with an empty term returns the same as List.
func (s *ClientService) Search(ctx context.Context, actor domain.Identity, term string) ([]*domain.Client, error) {
	if err := authorize(s.eval, actor, domain.ActionView, domain.EntityClient); err != nil {
		return nil, err
	}
	clients, err := s.list(ctx)
	if err != nil {
		return nil, err
	}
	term = strings.TrimSpace(term)
	out := make([]*domain.Client, 0, len(clients))
	for _, c := range clients {
		if c.Matches(term) {
			out = append(out, c)
		}
	}
	return redactAll(out), nil
}

func (s *ClientService) Get(ctx context.Context, actor domain.Identity, id string) (*domain.Client, error) {
	if err := authorize(s.eval, actor, domain.ActionView, domain.EntityClient); err != nil {
		return nil, err
	}
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}
	return redact(c), nil
}

func (s *ClientService) Create(ctx context.Context, actor domain.Identity, in domain.ClientInput) (_ *domain.Client, err error) {
	var id string
	name := strings.TrimSpace(in.NomCommercial)
	defer func() { s.finish(ctx, actor, "create", id, name, err) }()

	// 1. Permission and field checks happen before any lock is taken.
	if err = authorize(s.eval, actor, domain.ActionCreate, domain.EntityClient); err != nil {
		return nil, err
	}
	if err = in.Validate(); err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	// 2. One pending create per actor.
	release, err := s.guard.Acquire(ctx, "client:create:"+actor.UserID)
	if err != nil {
		return nil, err
	}
	defer release()

	creds, err := s.sealCredentials(in.Credentials)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	now := s.now().UTC()
	c := &domain.Client{
		ID:            s.newID(),
		NomCommercial: name,
		RaisonSociale: strings.TrimSpace(in.RaisonSociale),
		TypeClient:    in.TypeClient,
		Statut:        in.Statut,
		Email:         strings.TrimSpace(in.Email),
		Telephone:     strings.TrimSpace(in.Telephone),
		Address:       in.Address,
		Legal:         in.Legal,
		Credentials:   creds,
		Notes:         in.Notes,
		CreatedBy:     actor.UserID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if c.Statut == "" {
		c.Statut = domain.ClientActive
	}

	// 3. Store, then invalidate.
	if err = s.repo.Insert(ctx, c); err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	id = c.ID
	s.invalidate(ctx)
	s.rec.record(ctx, actor, domain.EntityClient, c.ID, domain.AuditCreate, c.NomCommercial)

	return redact(c), nil
}

func (s *ClientService) Update(ctx context.Context, actor domain.Identity, id string, patch domain.ClientPatch) (_ *domain.Client, err error) {
	var name string
	defer func() { s.finish(ctx, actor, "update", id, name, err) }()

	if err = authorize(s.eval, actor, domain.ActionUpdate, domain.EntityClient); err != nil {
		return nil, err
	}

	release, err := s.guard.Acquire(ctx, "client:"+id)
	if err != nil {
		return nil, err
	}
	defer release()

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update client: %w", err)
	}
	name = current.NomCommercial

	if patch.MotDePasseDGI, err = s.sealPtr(patch.MotDePasseDGI); err != nil {
		return nil, fmt.Errorf("update client: %w", err)
	}
	if patch.MotDePasseDAMANCOM, err = s.sealPtr(patch.MotDePasseDAMANCOM); err != nil {
		return nil, fmt.Errorf("update client: %w", err)
	}
	if err = patch.Apply(current); err != nil {
		return nil, fmt.Errorf("update client: %w", err)
	}
	current.NomCommercial = strings.TrimSpace(current.NomCommercial)
	current.UpdatedAt = s.now().UTC()

	if err = s.repo.Replace(ctx, current); err != nil {
		return nil, fmt.Errorf("update client: %w", err)
	}
	name = current.NomCommercial
	s.invalidate(ctx)
	s.rec.record(ctx, actor, domain.EntityClient, id, domain.AuditUpdate, name)
	if patch.TouchesCredentials() {
		s.rec.record(ctx, actor, domain.EntityClient, id, domain.AuditSecretChange, "")
	}

	return redact(current), nil
}

// Delete removes a client permanently.
func (s *ClientService) Delete(ctx context.Context, actor domain.Identity, id string) (err error) {
	var name string
	defer func() { s.finish(ctx, actor, "delete", id, name, err) }()

	if err = authorize(s.eval, actor, domain.ActionDelete, domain.EntityClient); err != nil {
		return err
	}

	release, err := s.guard.Acquire(ctx, "client:"+id)
	if err != nil {
		return err
	}
	defer release()

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	name = current.NomCommercial

	if err = s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	s.invalidate(ctx)
	s.rec.record(ctx, actor, domain.EntityClient, id, domain.AuditDelete, name)
	return nil
}

// Credentials returns the credential card of a client. Identifiers are shown
// as is; passwords go through RenderSecret and every effective reveal is
// written to the audit log.
func (s *ClientService) Credentials(ctx context.Context, actor domain.Identity, id string, reveal domain.RevealState) (*domain.ClientCredentialsView, error) {
	if err := authorize(s.eval, actor, domain.ActionView, domain.EntityClient); err != nil {
		return nil, err
	}
	if !s.eval.CanView(actor.Role, domain.MenuIdentifiants) {
		return nil, fmt.Errorf("client credentials: %w", domain.ErrForbidden)
	}

	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("client credentials: %w", err)
	}

	view := &domain.ClientCredentialsView{
		ClientID:            c.ID,
		NomCommercial:       c.NomCommercial,
		IdentifiantDGI:      c.Credentials.IdentifiantDGI,
		IdentifiantDAMANCOM: c.Credentials.IdentifiantDAMANCOM,
	}
	fields := []struct {
		name   string
		sealed string
		dst    *domain.FieldView
	}{
		{domain.SecretDGIPassword, c.Credentials.MotDePasseDGI, &view.MotDePasseDGI},
		{domain.SecretDAMANCOMPassword, c.Credentials.MotDePasseDAMANCOM, &view.MotDePasseDAMANCOM},
	}
	for _, f := range fields {
		plain, err := s.sealer.Open(f.sealed)
		if err != nil {
			return nil, fmt.Errorf("client credentials: open %s: %w", f.name, err)
		}
		*f.dst = RenderSecret(s.eval, actor.Role, plain, reveal.Revealed(c.ID, f.name))
		if f.dst.Copyable {
			metrics.SecretRevealsTotal.WithLabelValues(f.name).Inc()
			s.rec.record(ctx, actor, domain.EntityClient, c.ID, domain.AuditReveal, f.name)
		}
	}
	return view, nil
}

// list serves the client list through the cache.
func (s *ClientService) list(ctx context.Context) ([]*domain.Client, error) {
	if s.dirty.Load() {
		if err := s.cache.Invalidate(ctx); err != nil {
			metrics.ClientCacheTotal.WithLabelValues("bypass").Inc()
			clients, err := s.repo.List(ctx)
			if err != nil {
				return nil, fmt.Errorf("list clients: %w", err)
			}
			return clients, nil
		}
		s.dirty.Store(false)
	}

	cached, ok, err := s.cache.Get(ctx)
	switch {
	case err != nil:
		s.log.Warn().Err(err).Msg("client cache read failed, reading store")
	case ok:
		metrics.ClientCacheTotal.WithLabelValues("hit").Inc()
		return cached, nil
	}
	metrics.ClientCacheTotal.WithLabelValues("miss").Inc()

	// The generation is taken before the store read; a write acknowledged
	// in between bumps it and the fill below is dropped by the cache.
	version, verr := s.cache.Version(ctx)
	clients, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	if verr != nil || s.dirty.Load() {
		return clients, nil
	}
	stored, err := s.cache.Fill(ctx, version, clients)
	switch {
	case err != nil:
		s.log.Warn().Err(err).Msg("client cache write failed")
	case !stored:
		metrics.ClientCacheTotal.WithLabelValues("stale_fill").Inc()
	}
	return clients, nil
}

// invalidate runs after an acknowledged write.
func (s *ClientService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.dirty.Store(true)
		s.log.Error().Err(err).Msg("client cache invalidation failed, bypassing cache")
		return
	}
	s.dirty.Store(false)
}

func (s *ClientService) finish(ctx context.Context, actor domain.Identity, op, id, name string, err error) {
	metrics.ClientMutationsTotal.WithLabelValues(op, resultLabel(err)).Inc()
	if err != nil {
		s.log.Info().Err(err).Str("op", op).Str("client_id", id).Str("actor", actor.UserID).Msg("client mutation failed")
	} else {
		s.log.Info().Str("op", op).Str("client_id", id).Str("actor", actor.UserID).Msg("client mutation applied")
	}
	s.rec.outcome(ctx, actor, domain.EntityClient, id, "client."+op+"d", map[string]string{"Name": name}, err)
}

func (s *ClientService) sealCredentials(c domain.Credentials) (domain.Credentials, error) {
	var err error
	if c.MotDePasseDGI, err = s.sealer.Seal(c.MotDePasseDGI); err != nil {
		return c, err
	}
	if c.MotDePasseDAMANCOM, err = s.sealer.Seal(c.MotDePasseDAMANCOM); err != nil {
		return c, err
	}
	return c, nil
}

func (s *ClientService) sealPtr(v *string) (*string, error) {
	if v == nil {
		return nil, nil
	}
	sealed, err := s.sealer.Seal(*v)
	if err != nil {
		return nil, err
	}
	return &sealed, nil
}

// redact returns a copy of c without password values.
func redact(c *domain.Client) *domain.Client {
	cp := *c
	cp.Credentials.MotDePasseDGI = ""
	cp.Credentials.MotDePasseDAMANCOM = ""
	return &cp
}

func redactAll(in []*domain.Client) []*domain.Client {
	out := make([]*domain.Client, len(in))
	for i, c := range in {
		out[i] = redact(c)
	}
	return out
}
