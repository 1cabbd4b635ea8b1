package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rented/backend/internal/models"
)

// MemoryStore is a map-backed Store used by tests. Atomically applies fn
// directly: tests drive it from a single goroutine and never need rollback.
type MemoryStore struct {
	mu sync.Mutex

	nextID      uint
	workOrders  map[uint]models.WorkOrder
	quotes      map[uint]models.WorkOrderQuote
	interests   map[uint]models.WorkOrderInterest
	proofs      map[uint]models.WorkOrderProof
	tokens      map[uint]models.WorkOrderToken
	properties  map[uint]models.Property
	contracts   map[uint]models.PropertyContract
	documents   map[uint]models.Document
	extractions map[uint]models.DocumentExtraction
	users       map[uint]models.User
	sessions    map[string]models.Session
	activity    []models.ActivityEntry
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		workOrders:  map[uint]models.WorkOrder{},
		quotes:      map[uint]models.WorkOrderQuote{},
		interests:   map[uint]models.WorkOrderInterest{},
		proofs:      map[uint]models.WorkOrderProof{},
		tokens:      map[uint]models.WorkOrderToken{},
		properties:  map[uint]models.Property{},
		contracts:   map[uint]models.PropertyContract{},
		documents:   map[uint]models.Document{},
		extractions: map[uint]models.DocumentExtraction{},
		users:       map[uint]models.User{},
		sessions:    map[string]models.Session{},
	}
}

func (s *MemoryStore) Atomically(ctx context.Context, fn func(Store) error) error {
	return fn(s)
}

func (s *MemoryStore) WorkOrders() WorkOrderRepo   { return &memWorkOrders{s} }
func (s *MemoryStore) Quotes() QuoteRepo           { return &memQuotes{s} }
func (s *MemoryStore) Interests() InterestRepo     { return &memInterests{s} }
func (s *MemoryStore) Proofs() ProofRepo           { return &memProofs{s} }
func (s *MemoryStore) Tokens() TokenRepo           { return &memTokens{s} }
func (s *MemoryStore) Properties() PropertyRepo    { return &memProperties{s} }
func (s *MemoryStore) Contracts() ContractRepo     { return &memContracts{s} }
func (s *MemoryStore) Documents() DocumentRepo     { return &memDocuments{s} }
func (s *MemoryStore) Extractions() ExtractionRepo { return &memExtractions{s} }
func (s *MemoryStore) Users() UserRepo             { return &memUsers{s} }
func (s *MemoryStore) Sessions() SessionRepo       { return &memSessions{s} }
func (s *MemoryStore) Activity() ActivityRepo      { return &memActivity{s} }

func (s *MemoryStore) id() uint {
	s.nextID++
	return s.nextID
}

func stamp(created, updated *time.Time) {
	now := time.Now().UTC()
	if created != nil && created.IsZero() {
		*created = now
	}
	if updated != nil && updated.IsZero() {
		*updated = now
	}
}

func sortedKeys[M ~map[uint]V, V any](m M) []uint {
	keys := make([]uint, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

type memWorkOrders struct{ s *MemoryStore }

func (r *memWorkOrders) Create(ctx context.Context, wo *models.WorkOrder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	wo.ID = r.s.id()
	stamp(&wo.CreatedAt, &wo.UpdatedAt)
	r.s.workOrders[wo.ID] = *wo
	return nil
}

func (r *memWorkOrders) Get(ctx context.Context, id uint) (*models.WorkOrder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	wo, ok := r.s.workOrders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &wo, nil
}

func (r *memWorkOrders) Update(ctx context.Context, wo *models.WorkOrder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	wo.UpdatedAt = time.Now().UTC()
	r.s.workOrders[wo.ID] = *wo
	return nil
}

func (r *memWorkOrders) List(ctx context.Context, filter WorkOrderFilter) ([]models.WorkOrder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	keys := sortedKeys(r.s.workOrders)
	out := make([]models.WorkOrder, 0, len(keys))
	for i := len(keys) - 1; i >= 0; i-- {
		wo := r.s.workOrders[keys[i]]
		if filter.PropertyID != nil && wo.PropertyID != *filter.PropertyID {
			continue
		}
		if filter.PropertyIDs != nil && !containsID(filter.PropertyIDs, wo.PropertyID) {
			continue
		}
		if filter.Status != "" && wo.Status != filter.Status {
			continue
		}
		if filter.Type != "" && wo.Type != filter.Type {
			continue
		}
		if filter.Search != "" {
			needle := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(wo.Title), needle) &&
				!strings.Contains(strings.ToLower(wo.Description), needle) {
				continue
			}
		}
		out = append(out, wo)
	}
	return out, nil
}

func (r *memWorkOrders) IDsByProperty(ctx context.Context, propertyID uint) ([]uint, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []uint
	for _, k := range sortedKeys(r.s.workOrders) {
		if r.s.workOrders[k].PropertyID == propertyID {
			ids = append(ids, k)
		}
	}
	return ids, nil
}

func (r *memWorkOrders) Delete(ctx context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.workOrders, id)
	return nil
}

type memQuotes struct{ s *MemoryStore }

func (r *memQuotes) Create(ctx context.Context, q *models.WorkOrderQuote) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q.ID = r.s.id()
	stamp(&q.CreatedAt, &q.UpdatedAt)
	r.s.quotes[q.ID] = *q
	return nil
}

func (r *memQuotes) Get(ctx context.Context, id uint) (*models.WorkOrderQuote, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q, ok := r.s.quotes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &q, nil
}

func (r *memQuotes) Update(ctx context.Context, q *models.WorkOrderQuote) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q.UpdatedAt = time.Now().UTC()
	r.s.quotes[q.ID] = *q
	return nil
}

func (r *memQuotes) ListByWorkOrder(ctx context.Context, workOrderID uint) ([]models.WorkOrderQuote, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.WorkOrderQuote
	for _, k := range sortedKeys(r.s.quotes) {
		if r.s.quotes[k].WorkOrderID == workOrderID {
			out = append(out, r.s.quotes[k])
		}
	}
	return out, nil
}

func (r *memQuotes) RejectOthers(ctx context.Context, workOrderID, keepID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for k, q := range r.s.quotes {
		if q.WorkOrderID == workOrderID && q.ID != keepID {
			q.Status = models.SubmissionStatusRejected
			q.UpdatedAt = time.Now().UTC()
			r.s.quotes[k] = q
		}
	}
	return nil
}

func (r *memQuotes) DeleteByWorkOrders(ctx context.Context, workOrderIDs []uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for k, q := range r.s.quotes {
		if containsID(workOrderIDs, q.WorkOrderID) {
			delete(r.s.quotes, k)
		}
	}
	return nil
}

type memInterests struct{ s *MemoryStore }

func (r *memInterests) Create(ctx context.Context, in *models.WorkOrderInterest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	in.ID = r.s.id()
	stamp(&in.CreatedAt, &in.UpdatedAt)
	r.s.interests[in.ID] = *in
	return nil
}

func (r *memInterests) Get(ctx context.Context, id uint) (*models.WorkOrderInterest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	in, ok := r.s.interests[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &in, nil
}

func (r *memInterests) Update(ctx context.Context, in *models.WorkOrderInterest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	in.UpdatedAt = time.Now().UTC()
	r.s.interests[in.ID] = *in
	return nil
}

func (r *memInterests) ListByWorkOrder(ctx context.Context, workOrderID uint) ([]models.WorkOrderInterest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.WorkOrderInterest
	for _, k := range sortedKeys(r.s.interests) {
		if r.s.interests[k].WorkOrderID == workOrderID {
			out = append(out, r.s.interests[k])
		}
	}
	return out, nil
}

func (r *memInterests) RejectOthers(ctx context.Context, workOrderID, keepID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for k, in := range r.s.interests {
		if in.WorkOrderID == workOrderID && in.ID != keepID {
			in.Status = models.SubmissionStatusRejected
			in.UpdatedAt = time.Now().UTC()
			r.s.interests[k] = in
		}
	}
	return nil
}

func (r *memInterests) DeleteByWorkOrders(ctx context.Context, workOrderIDs []uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for k, in := range r.s.interests {
		if containsID(workOrderIDs, in.WorkOrderID) {
			delete(r.s.interests, k)
		}
	}
	return nil
}

type memProofs struct{ s *MemoryStore }

func (r *memProofs) Create(ctx context.Context, p *models.WorkOrderProof) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID = r.s.id()
	stamp(&p.CreatedAt, &p.UpdatedAt)
	r.s.proofs[p.ID] = *p
	return nil
}

func (r *memProofs) Update(ctx context.Context, p *models.WorkOrderProof) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.UpdatedAt = time.Now().UTC()
	r.s.proofs[p.ID] = *p
	return nil
}

func (r *memProofs) Latest(ctx context.Context, workOrderID uint) (*models.WorkOrderProof, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	keys := sortedKeys(r.s.proofs)
	for i := len(keys) - 1; i >= 0; i-- {
		if p := r.s.proofs[keys[i]]; p.WorkOrderID == workOrderID {
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memProofs) ListByWorkOrder(ctx context.Context, workOrderID uint) ([]models.WorkOrderProof, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.WorkOrderProof
	for _, k := range sortedKeys(r.s.proofs) {
		if r.s.proofs[k].WorkOrderID == workOrderID {
			out = append(out, r.s.proofs[k])
		}
	}
	return out, nil
}

func (r *memProofs) DeleteByWorkOrders(ctx context.Context, workOrderIDs []uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for k, p := range r.s.proofs {
		if containsID(workOrderIDs, p.WorkOrderID) {
			delete(r.s.proofs, k)
		}
	}
	return nil
}

type memTokens struct{ s *MemoryStore }

func (r *memTokens) Create(ctx context.Context, t *models.WorkOrderToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t.ID = r.s.id()
	stamp(&t.CreatedAt, nil)
	r.s.tokens[t.ID] = *t
	return nil
}

func (r *memTokens) GetByHash(ctx context.Context, hash string) (*models.WorkOrderToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, k := range sortedKeys(r.s.tokens) {
		if t := r.s.tokens[k]; t.TokenHash == hash {
			return &t, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memTokens) ListByWorkOrder(ctx context.Context, workOrderID uint) ([]models.WorkOrderToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.WorkOrderToken
	for _, k := range sortedKeys(r.s.tokens) {
		if r.s.tokens[k].WorkOrderID == workOrderID {
			out = append(out, r.s.tokens[k])
		}
	}
	return out, nil
}

func (r *memTokens) Deactivate(ctx context.Context, workOrderID uint, scope models.TokenScope) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for k, t := range r.s.tokens {
		if t.WorkOrderID != workOrderID {
			continue
		}
		if scope != "" && t.Scope != scope {
			continue
		}
		t.IsActive = false
		r.s.tokens[k] = t
	}
	return nil
}

func (r *memTokens) BindQuote(ctx context.Context, tokenID, quoteID uint, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tokens[tokenID]
	if !ok || t.QuoteID != nil || t.InterestID != nil {
		return false, nil
	}
	t.QuoteID = &quoteID
	t.UsedAt = &at
	r.s.tokens[tokenID] = t
	return true, nil
}

func (r *memTokens) BindInterest(ctx context.Context, tokenID, interestID uint, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tokens[tokenID]
	if !ok || t.QuoteID != nil || t.InterestID != nil {
		return false, nil
	}
	t.InterestID = &interestID
	t.UsedAt = &at
	r.s.tokens[tokenID] = t
	return true, nil
}

func (r *memTokens) DeleteByWorkOrders(ctx context.Context, workOrderIDs []uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for k, t := range r.s.tokens {
		if containsID(workOrderIDs, t.WorkOrderID) {
			delete(r.s.tokens, k)
		}
	}
	return nil
}

type memProperties struct{ s *MemoryStore }

func (r *memProperties) Create(ctx context.Context, p *models.Property) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID = r.s.id()
	stamp(&p.CreatedAt, &p.UpdatedAt)
	r.s.properties[p.ID] = *p
	return nil
}

func (r *memProperties) Get(ctx context.Context, id uint) (*models.Property, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.properties[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r *memProperties) Update(ctx context.Context, p *models.Property) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.UpdatedAt = time.Now().UTC()
	r.s.properties[p.ID] = *p
	return nil
}

func (r *memProperties) List(ctx context.Context, ownerUserID *uint) ([]models.Property, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Property
	for _, k := range sortedKeys(r.s.properties) {
		p := r.s.properties[k]
		if ownerUserID != nil && p.OwnerUserID != *ownerUserID {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *memProperties) IDsByOwner(ctx context.Context, ownerUserID uint) ([]uint, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []uint
	for _, k := range sortedKeys(r.s.properties) {
		if r.s.properties[k].OwnerUserID == ownerUserID {
			ids = append(ids, k)
		}
	}
	return ids, nil
}

func (r *memProperties) Delete(ctx context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.properties, id)
	return nil
}

type memContracts struct{ s *MemoryStore }

func (r *memContracts) GetByProperty(ctx context.Context, propertyID uint) (*models.PropertyContract, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, k := range sortedKeys(r.s.contracts) {
		if c := r.s.contracts[k]; c.PropertyID == propertyID {
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memContracts) Save(ctx context.Context, c *models.PropertyContract) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c.ID == 0 {
		for _, k := range sortedKeys(r.s.contracts) {
			if existing := r.s.contracts[k]; existing.PropertyID == c.PropertyID {
				c.ID = existing.ID
				c.CreatedAt = existing.CreatedAt
				break
			}
		}
	}
	if c.ID == 0 {
		c.ID = r.s.id()
	}
	stamp(&c.CreatedAt, &c.UpdatedAt)
	c.UpdatedAt = time.Now().UTC()
	r.s.contracts[c.ID] = *c
	return nil
}

func (r *memContracts) DeleteByProperty(ctx context.Context, propertyID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, k := range sortedKeys(r.s.contracts) {
		if r.s.contracts[k].PropertyID == propertyID {
			delete(r.s.contracts, k)
		}
	}
	return nil
}

type memDocuments struct{ s *MemoryStore }

func (r *memDocuments) Create(ctx context.Context, d *models.Document) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d.ID = r.s.id()
	stamp(&d.CreatedAt, &d.UpdatedAt)
	r.s.documents[d.ID] = *d
	return nil
}

func (r *memDocuments) Get(ctx context.Context, id uint) (*models.Document, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.documents[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &d, nil
}

func (r *memDocuments) Update(ctx context.Context, d *models.Document) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d.UpdatedAt = time.Now().UTC()
	r.s.documents[d.ID] = *d
	return nil
}

func (r *memDocuments) List(ctx context.Context, filter DocumentFilter) ([]models.Document, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	keys := sortedKeys(r.s.documents)
	var out []models.Document
	for i := len(keys) - 1; i >= 0; i-- {
		d := r.s.documents[keys[i]]
		if filter.PropertyID != nil && d.PropertyID != *filter.PropertyID {
			continue
		}
		if filter.PropertyIDs != nil && !containsID(filter.PropertyIDs, d.PropertyID) {
			continue
		}
		if filter.Status != "" && d.Status != filter.Status {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (r *memDocuments) IDsByProperty(ctx context.Context, propertyID uint) ([]uint, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []uint
	for _, k := range sortedKeys(r.s.documents) {
		if r.s.documents[k].PropertyID == propertyID {
			ids = append(ids, k)
		}
	}
	return ids, nil
}

func (r *memDocuments) Delete(ctx context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.documents, id)
	return nil
}

func (r *memDocuments) DeleteByProperty(ctx context.Context, propertyID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for k, d := range r.s.documents {
		if d.PropertyID == propertyID {
			delete(r.s.documents, k)
		}
	}
	return nil
}

type memExtractions struct{ s *MemoryStore }

func (r *memExtractions) Create(ctx context.Context, e *models.DocumentExtraction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e.ID = r.s.id()
	stamp(&e.CreatedAt, &e.UpdatedAt)
	r.s.extractions[e.ID] = *e
	return nil
}

func (r *memExtractions) GetByDocument(ctx context.Context, documentID uint) (*models.DocumentExtraction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	keys := sortedKeys(r.s.extractions)
	for i := len(keys) - 1; i >= 0; i-- {
		if e := r.s.extractions[keys[i]]; e.DocumentID == documentID {
			return &e, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memExtractions) Update(ctx context.Context, e *models.DocumentExtraction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e.UpdatedAt = time.Now().UTC()
	r.s.extractions[e.ID] = *e
	return nil
}

func (r *memExtractions) DeleteByDocuments(ctx context.Context, documentIDs []uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for k, e := range r.s.extractions {
		if containsID(documentIDs, e.DocumentID) {
			delete(r.s.extractions, k)
		}
	}
	return nil
}

type memUsers struct{ s *MemoryStore }

func (r *memUsers) Create(ctx context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u.ID = r.s.id()
	r.s.users[u.ID] = *u
	return nil
}

func (r *memUsers) Get(ctx context.Context, id uint) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r *memUsers) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, k := range sortedKeys(r.s.users) {
		if u := r.s.users[k]; u.Username == username {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memUsers) Update(ctx context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.users[u.ID] = *u
	return nil
}

func (r *memUsers) List(ctx context.Context, role string) ([]models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.User
	for _, k := range sortedKeys(r.s.users) {
		u := r.s.users[k]
		if role != "" && u.Role != role {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func (r *memUsers) Delete(ctx context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.users, id)
	return nil
}

type memSessions struct{ s *MemoryStore }

func (r *memSessions) Create(ctx context.Context, sess *models.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stamp(&sess.CreatedAt, nil)
	r.s.sessions[sess.ID] = *sess
	return nil
}

func (r *memSessions) Get(ctx context.Context, id string) (*models.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sess, ok := r.s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &sess, nil
}

func (r *memSessions) Revoke(ctx context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if sess, ok := r.s.sessions[id]; ok {
		sess.RevokedAt = &at
		r.s.sessions[id] = sess
	}
	return nil
}

func (r *memSessions) DeleteByUser(ctx context.Context, userID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for k, sess := range r.s.sessions {
		if sess.UserID == userID {
			delete(r.s.sessions, k)
		}
	}
	return nil
}

type memActivity struct{ s *MemoryStore }

func (r *memActivity) Append(ctx context.Context, e *models.ActivityEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e.ID = r.s.id()
	stamp(&e.CreatedAt, nil)
	r.s.activity = append(r.s.activity, *e)
	return nil
}

func (r *memActivity) List(ctx context.Context, userID *uint, limit int) ([]models.ActivityEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if limit <= 0 {
		limit = 200
	}
	var out []models.ActivityEntry
	for i := len(r.s.activity) - 1; i >= 0 && len(out) < limit; i-- {
		e := r.s.activity[i]
		if userID != nil && (e.UserID == nil || *e.UserID != *userID) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func containsID(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
