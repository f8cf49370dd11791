// In-memory repository implementations. Used as a fallback when Postgres
// is not available (local dev, tests). Semantics match the SQL
// implementations, including optimistic version checks on tickets and
// insertion-ordered audit listing.
package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/smart-helpdesk/internal/domain"
)

// MemoryTicketRepository implements TicketRepository with a map.
type MemoryTicketRepository struct {
	mu      sync.RWMutex
	tickets map[string]domain.Ticket
}

// NewMemoryTicketRepository creates an empty repository.
func NewMemoryTicketRepository() *MemoryTicketRepository {
	return &MemoryTicketRepository{tickets: make(map[string]domain.Ticket)}
}

func (r *MemoryTicketRepository) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	ticket.ID = uuid.NewString()
	ticket.Version = 1
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	r.tickets[ticket.ID] = cloneTicket(*ticket)
	return nil
}

func (r *MemoryTicketRepository) Update(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.tickets[ticket.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if stored.Version != ticket.Version {
		return ErrVersionConflict
	}
	ticket.Version++
	ticket.UpdatedAt = time.Now()
	ticket.CreatedAt = stored.CreatedAt
	r.tickets[ticket.ID] = cloneTicket(*ticket)
	return nil
}

func (r *MemoryTicketRepository) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := cloneTicket(stored)
	return &out, nil
}

func (r *MemoryTicketRepository) ListWithFilter(_ context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []domain.Ticket
	for _, ticket := range r.tickets {
		if !matchTicket(ticket, filter) {
			continue
		}
		result = append(result, cloneTicket(ticket))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(result) {
		return nil, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], nil
}

func matchTicket(ticket domain.Ticket, filter TicketFilter) bool {
	if filter.RequesterID != nil && ticket.RequesterID != *filter.RequesterID {
		return false
	}
	if filter.AssigneeID != nil {
		if ticket.AssigneeID == nil || *ticket.AssigneeID != *filter.AssigneeID {
			return false
		}
	}
	if len(filter.Statuses) > 0 && !statusIn(ticket.Status, filter.Statuses) {
		return false
	}
	if len(filter.Categories) > 0 && !categoryIn(ticket.Category, filter.Categories) {
		return false
	}
	if filter.DueBefore != nil {
		if ticket.DueAt == nil || ticket.DueAt.After(*filter.DueBefore) {
			return false
		}
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		term := strings.ToLower(strings.TrimSpace(*filter.SearchTerm))
		if !strings.Contains(strings.ToLower(ticket.Title), term) &&
			!strings.Contains(strings.ToLower(ticket.Description), term) {
			return false
		}
	}
	return true
}

func statusIn(status domain.TicketStatus, candidates []domain.TicketStatus) bool {
	for _, candidate := range candidates {
		if candidate == status {
			return true
		}
	}
	return false
}

func categoryIn(category domain.TicketCategory, candidates []domain.TicketCategory) bool {
	for _, candidate := range candidates {
		if candidate == category {
			return true
		}
	}
	return false
}

func cloneTicket(t domain.Ticket) domain.Ticket {
	if t.AssigneeID != nil {
		id := *t.AssigneeID
		t.AssigneeID = &id
	}
	if t.SuggestionID != nil {
		id := *t.SuggestionID
		t.SuggestionID = &id
	}
	if t.DueAt != nil {
		due := *t.DueAt
		t.DueAt = &due
	}
	if t.ClosedAt != nil {
		closed := *t.ClosedAt
		t.ClosedAt = &closed
	}
	return t
}

// MemoryReplyRepository implements ReplyRepository with an append-only slice.
type MemoryReplyRepository struct {
	mu      sync.RWMutex
	replies []domain.Reply
}

// NewMemoryReplyRepository creates an empty repository.
func NewMemoryReplyRepository() *MemoryReplyRepository {
	return &MemoryReplyRepository{}
}

func (r *MemoryReplyRepository) Create(_ context.Context, reply *domain.Reply) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	reply.ID = uuid.NewString()
	reply.CreatedAt = time.Now()
	r.replies = append(r.replies, *reply)
	return nil
}

func (r *MemoryReplyRepository) ListByTicket(_ context.Context, ticketID string) ([]domain.Reply, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Reply
	for _, reply := range r.replies {
		if reply.TicketID == ticketID {
			result = append(result, reply)
		}
	}
	return result, nil
}

// MemorySuggestionRepository implements SuggestionRepository with a map.
type MemorySuggestionRepository struct {
	mu          sync.RWMutex
	suggestions []domain.Suggestion
}

// NewMemorySuggestionRepository creates an empty repository.
func NewMemorySuggestionRepository() *MemorySuggestionRepository {
	return &MemorySuggestionRepository{}
}

func (r *MemorySuggestionRepository) Create(_ context.Context, suggestion *domain.Suggestion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	suggestion.ID = uuid.NewString()
	suggestion.CreatedAt = time.Now()
	stored := *suggestion
	stored.ArticleIDs = append([]string(nil), suggestion.ArticleIDs...)
	r.suggestions = append(r.suggestions, stored)
	return nil
}

func (r *MemorySuggestionRepository) GetByID(_ context.Context, id string) (*domain.Suggestion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.suggestions {
		if r.suggestions[i].ID == id {
			out := r.suggestions[i]
			out.ArticleIDs = append([]string(nil), out.ArticleIDs...)
			return &out, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *MemorySuggestionRepository) ListByTicket(_ context.Context, ticketID string) ([]domain.Suggestion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Suggestion
	// newest first, matching the SQL ordering
	for i := len(r.suggestions) - 1; i >= 0; i-- {
		if r.suggestions[i].TicketID == ticketID {
			out := r.suggestions[i]
			out.ArticleIDs = append([]string(nil), out.ArticleIDs...)
			result = append(result, out)
		}
	}
	return result, nil
}

// MemoryArticleRepository implements ArticleRepository with a map.
type MemoryArticleRepository struct {
	mu       sync.RWMutex
	articles map[string]domain.KBArticle
}

// NewMemoryArticleRepository creates an empty repository.
func NewMemoryArticleRepository() *MemoryArticleRepository {
	return &MemoryArticleRepository{articles: make(map[string]domain.KBArticle)}
}

func (r *MemoryArticleRepository) Create(_ context.Context, article *domain.KBArticle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	article.ID = uuid.NewString()
	article.CreatedAt = now
	article.UpdatedAt = now
	r.articles[article.ID] = cloneArticle(*article)
	return nil
}

func (r *MemoryArticleRepository) Update(_ context.Context, article *domain.KBArticle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.articles[article.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	article.CreatedAt = stored.CreatedAt
	article.UpdatedAt = time.Now()
	r.articles[article.ID] = cloneArticle(*article)
	return nil
}

func (r *MemoryArticleRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.articles[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.articles, id)
	return nil
}

func (r *MemoryArticleRepository) GetByID(_ context.Context, id string) (*domain.KBArticle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored, ok := r.articles[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := cloneArticle(stored)
	return &out, nil
}

func (r *MemoryArticleRepository) ListWithFilter(_ context.Context, filter ArticleFilter) ([]domain.KBArticle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.KBArticle
	for _, article := range r.articles {
		if filter.Status != nil && article.Status != *filter.Status {
			continue
		}
		if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
			term := strings.ToLower(strings.TrimSpace(*filter.SearchTerm))
			if !strings.Contains(strings.ToLower(article.Title), term) &&
				!strings.Contains(strings.ToLower(article.Body), term) {
				continue
			}
		}
		result = append(result, cloneArticle(article))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})
	return result, nil
}

func (r *MemoryArticleRepository) ListPublished(_ context.Context) ([]domain.KBArticle, error) {
	status := domain.ArticleStatusPublished
	return r.ListWithFilter(context.Background(), ArticleFilter{Status: &status})
}

func cloneArticle(a domain.KBArticle) domain.KBArticle {
	a.Tags = append([]string(nil), a.Tags...)
	return a
}

// MemoryAuditRepository implements AuditRepository with an append-only slice.
type MemoryAuditRepository struct {
	mu      sync.RWMutex
	entries []domain.AuditEntry
	nextSeq int64
}

// NewMemoryAuditRepository creates an empty repository.
func NewMemoryAuditRepository() *MemoryAuditRepository {
	return &MemoryAuditRepository{nextSeq: 1}
}

func (r *MemoryAuditRepository) Append(_ context.Context, entry *domain.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry.ID = uuid.NewString()
	entry.Seq = r.nextSeq
	r.nextSeq++
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *MemoryAuditRepository) ListByTicket(_ context.Context, ticketID string) ([]domain.AuditEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.AuditEntry
	for _, entry := range r.entries {
		if entry.TicketID == ticketID {
			result = append(result, entry)
		}
	}
	return result, nil
}

// MemoryAgentConfigRepository implements AgentConfigRepository.
type MemoryAgentConfigRepository struct {
	mu  sync.RWMutex
	cfg domain.AgentConfig
}

// NewMemoryAgentConfigRepository starts with the default policy.
func NewMemoryAgentConfigRepository() *MemoryAgentConfigRepository {
	cfg := domain.DefaultAgentConfig()
	cfg.UpdatedAt = time.Now()
	return &MemoryAgentConfigRepository{cfg: cfg}
}

func (r *MemoryAgentConfigRepository) Get(_ context.Context) (domain.AgentConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cfg, nil
}

func (r *MemoryAgentConfigRepository) Update(_ context.Context, cfg *domain.AgentConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cfg.UpdatedAt = time.Now()
	r.cfg = *cfg
	return nil
}

// MemoryUserRepository implements UserRepository with a map.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

// NewMemoryUserRepository creates an empty repository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]domain.User)}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = *user
	return nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &stored, nil
}

func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) {
			stored := user
			return &stored, nil
		}
	}
	return nil, pgx.ErrNoRows
}
