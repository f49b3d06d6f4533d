package workflow

import (
	"sync"

	"bitbucket.org/mmdatafocus/resmatch_backend/config"
	"bitbucket.org/mmdatafocus/resmatch_backend/models"
	"bitbucket.org/mmdatafocus/resmatch_backend/utils"
	"github.com/google/uuid"
)

// Session is the explicit per-caller state: uploaded inputs, the merged
// record set one reconcile pass produced, and the id sequences. Nothing in
// this package touches package-level mutable state; every operation takes
// the session it works on. The model assumes a single writer per session.
type Session struct {
	ID           string
	Vocabulary   *config.Vocabulary
	Orders       []models.OrderRecord
	Reservations []models.ReservationRecord
	Merged       []*models.MatchedRecord

	nextRecordID int64
}

func NewSession(vocab *config.Vocabulary) *Session {
	if vocab == nil {
		vocab = config.DefaultVocabulary()
	}
	return &Session{
		ID:         uuid.NewString(),
		Vocabulary: vocab,
	}
}

// SetOrders replaces the order pool, assigning each order its synthetic id.
func (s *Session) SetOrders(orders []models.OrderRecord) {
	for i := range orders {
		orders[i].ID = int64(i + 1)
	}
	s.Orders = orders
}

func (s *Session) SetReservations(records []models.ReservationRecord) {
	s.Reservations = records
}

func (s *Session) nextID() int64 {
	s.nextRecordID++
	return s.nextRecordID
}

func (s *Session) FindRecord(recordID int64) *models.MatchedRecord {
	for _, record := range s.Merged {
		if record.RecordID == recordID {
			return record
		}
	}
	return nil
}

func (s *Session) FindOrder(orderID int64) *models.OrderRecord {
	for i := range s.Orders {
		if s.Orders[i].ID == orderID {
			return &s.Orders[i]
		}
	}
	return nil
}

// SessionRegistry hands out sessions to the HTTP layer. Sessions are
// isolated from each other; the registry lock only guards the map itself.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[string]*Session)}
}

func (r *SessionRegistry) Create(vocab *config.Vocabulary) *Session {
	sess := NewSession(vocab)
	r.mu.Lock()
	r.sessions[sess.ID] = sess
	r.mu.Unlock()
	return sess
}

func (r *SessionRegistry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[id]
	if !ok {
		return nil, utils.ErrorSessionNotFound
	}
	return sess, nil
}
