package services

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/tournament-accommodation/models"
	"github.com/Dosada05/tournament-accommodation/repositories"
)

// memStore - общая in-memory БД фейковых репозиториев. Транзакции выполняются
// последовательно, откат восстанавливает снимок.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	nextID         int
	clusters       map[int]models.HotelCluster
	hotels         map[int]models.Hotel
	rooms          map[int]models.RoomCategory
	teamRequests   map[int]models.TeamRequest
	members        map[int]models.TeamMember
	accommodations map[int]models.AccommodationRequest

	// confirmConflicts: следующие N вызовов Confirm падают как нарушение уникальности.
	confirmConflicts int
	commits          int
	rollbacks        int
}

func newMemStore() *memStore {
	return &memStore{
		nextID:         1,
		clusters:       map[int]models.HotelCluster{},
		hotels:         map[int]models.Hotel{},
		rooms:          map[int]models.RoomCategory{},
		teamRequests:   map[int]models.TeamRequest{},
		members:        map[int]models.TeamMember{},
		accommodations: map[int]models.AccommodationRequest{},
	}
}

type memSnapshot struct {
	nextID         int
	clusters       map[int]models.HotelCluster
	hotels         map[int]models.Hotel
	rooms          map[int]models.RoomCategory
	teamRequests   map[int]models.TeamRequest
	members        map[int]models.TeamMember
	accommodations map[int]models.AccommodationRequest
}

func (s *memStore) id() int {
	id := s.nextID
	s.nextID++
	return id
}

func (s *memStore) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snap := memSnapshot{
		nextID:         s.nextID,
		clusters:       maps.Clone(s.clusters),
		hotels:         maps.Clone(s.hotels),
		rooms:          maps.Clone(s.rooms),
		teamRequests:   maps.Clone(s.teamRequests),
		members:        maps.Clone(s.members),
		accommodations: maps.Clone(s.accommodations),
	}
	s.mu.Unlock()

	if err := fn(nil); err != nil {
		s.mu.Lock()
		s.nextID = snap.nextID
		s.clusters = snap.clusters
		s.hotels = snap.hotels
		s.rooms = snap.rooms
		s.teamRequests = snap.teamRequests
		s.members = snap.members
		s.accommodations = snap.accommodations
		s.rollbacks++
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.commits++
	s.mu.Unlock()
	return nil
}

// --- заполнение данными ---

func (s *memStore) addCluster(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := models.HotelCluster{ID: s.id(), Name: name}
	s.clusters[c.ID] = c
	return c.ID
}

func (s *memStore) addHotel(h models.Hotel) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	h.ID = s.id()
	if h.Approval == "" {
		h.Approval = models.HotelApprovalApproved
	}
	s.hotels[h.ID] = h
	return h.ID
}

func (s *memStore) addRoom(hotelID int, price float64, total, available int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	rc := models.RoomCategory{ID: s.id(), HotelID: hotelID, Name: "Standard", PricePerNight: price, TotalRooms: total, AvailableRooms: available}
	s.rooms[rc.ID] = rc
	return rc.ID
}

func (s *memStore) addTeamRequest(tr models.TeamRequest, members ...models.TeamMember) (int, []int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tr.ID = s.id()
	if tr.Status == "" {
		tr.Status = models.TeamRequestApproved
	}
	s.teamRequests[tr.ID] = tr
	ids := make([]int, 0, len(members))
	for _, m := range members {
		m.ID = s.id()
		m.TeamRequestID = tr.ID
		s.members[m.ID] = m
		ids = append(ids, m.ID)
	}
	return tr.ID, ids
}

func (s *memStore) addAccommodation(a models.AccommodationRequest) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.id()
	if a.Status == "" {
		a.Status = models.AccommodationPending
	}
	if a.CheckInStatus == "" {
		a.CheckInStatus = models.CheckInPending
	}
	if a.CheckOutStatus == "" {
		a.CheckOutStatus = models.CheckOutPending
	}
	s.accommodations[a.ID] = a
	return a.ID
}

func (s *memStore) accommodation(id int) models.AccommodationRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accommodations[id]
}

func (s *memStore) room(id int) models.RoomCategory {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rooms[id]
}

// --- AccommodationRepository ---

type memAccommodationRepo struct{ s *memStore }

func (r memAccommodationRepo) Create(ctx context.Context, exec repositories.SQLExecutor, a *models.AccommodationRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.accommodations {
		if existing.TeamMemberID == a.TeamMemberID {
			return repositories.ErrAccommodationExists
		}
	}
	a.ID = r.s.id()
	r.s.accommodations[a.ID] = *a
	return nil
}

func (r memAccommodationRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.AccommodationRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.accommodations[id]
	if !ok {
		return nil, repositories.ErrAccommodationNotFound
	}
	return &a, nil
}

func (r memAccommodationRepo) GetByQRCode(ctx context.Context, token string) (*models.AccommodationRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.accommodations {
		if a.QRCode != nil && *a.QRCode == token {
			return &a, nil
		}
	}
	return nil, repositories.ErrAccommodationNotFound
}

func (r memAccommodationRepo) List(ctx context.Context, f repositories.AccommodationFilter) ([]*models.AccommodationRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*models.AccommodationRequest, 0)
	for _, a := range r.s.accommodations {
		if f.TeamRequestID != nil && a.TeamRequestID != *f.TeamRequestID {
			continue
		}
		if f.Status != nil && a.Status != *f.Status {
			continue
		}
		if f.CheckInStatus != nil && a.CheckInStatus != *f.CheckInStatus {
			continue
		}
		if len(f.HotelIDs) > 0 && (a.HotelID == nil || !containsInt(f.HotelIDs, *a.HotelID)) {
			continue
		}
		a := a
		out = append(out, &a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memAccommodationRepo) ConfirmationCodeExists(ctx context.Context, exec repositories.SQLExecutor, code string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.accommodations {
		if a.ConfirmationCode != nil && *a.ConfirmationCode == code {
			return true, nil
		}
	}
	return false, nil
}

// update применяет fn к строке, если выполняется cond, как условный UPDATE.
func (r memAccommodationRepo) update(id int, cond func(a models.AccommodationRequest) bool, fn func(a *models.AccommodationRequest) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.accommodations[id]
	if !ok || !cond(a) {
		return repositories.ErrAccommodationStateConflict
	}
	if err := fn(&a); err != nil {
		return err
	}
	r.s.accommodations[id] = a
	return nil
}

func (r memAccommodationRepo) Assign(ctx context.Context, exec repositories.SQLExecutor, id int, from models.AccommodationStatus, p repositories.AssignParams) error {
	return r.update(id,
		func(a models.AccommodationRequest) bool { return a.Status == from },
		func(a *models.AccommodationRequest) error {
			a.Status = models.AccommodationHotelAssigned
			if p.ClusterID != nil {
				a.ClusterID = intPtr(*p.ClusterID)
			}
			a.HotelID = intPtr(p.HotelID)
			a.RoomCategoryID = intPtr(p.RoomCategoryID)
			a.AssignedBy = intPtr(p.AssignedBy)
			a.AssignedAt = timePtr(p.AssignedAt)
			a.HotelResponseReason = nil
			a.HotelRespondedBy = nil
			a.HotelRespondedAt = nil
			return nil
		})
}

func (r memAccommodationRepo) MarkHotelApproved(ctx context.Context, exec repositories.SQLExecutor, id int, respondedBy int, at time.Time) error {
	return r.update(id,
		func(a models.AccommodationRequest) bool { return a.Status == models.AccommodationHotelAssigned },
		func(a *models.AccommodationRequest) error {
			a.Status = models.AccommodationHotelApproved
			a.HotelRespondedBy = intPtr(respondedBy)
			a.HotelRespondedAt = timePtr(at)
			return nil
		})
}

func (r memAccommodationRepo) Confirm(ctx context.Context, exec repositories.SQLExecutor, id int, code, qrToken string, at time.Time) error {
	return r.update(id,
		func(a models.AccommodationRequest) bool {
			return a.Status == models.AccommodationHotelApproved && a.ConfirmationCode == nil
		},
		func(a *models.AccommodationRequest) error {
			if r.s.confirmConflicts > 0 {
				r.s.confirmConflicts--
				return repositories.ErrConfirmationCodeConflict
			}
			for otherID, other := range r.s.accommodations {
				if otherID != id && other.ConfirmationCode != nil && *other.ConfirmationCode == code {
					return repositories.ErrConfirmationCodeConflict
				}
			}
			a.Status = models.AccommodationConfirmed
			a.ConfirmationCode = strPtr(code)
			a.QRCode = strPtr(qrToken)
			return nil
		})
}

func (r memAccommodationRepo) Reject(ctx context.Context, exec repositories.SQLExecutor, id int, reason string, respondedBy int, at time.Time) error {
	return r.update(id,
		func(a models.AccommodationRequest) bool { return a.Status == models.AccommodationHotelAssigned },
		func(a *models.AccommodationRequest) error {
			a.Status = models.AccommodationHotelRejected
			a.HotelResponseReason = strPtr(reason)
			a.HotelRespondedBy = intPtr(respondedBy)
			a.HotelRespondedAt = timePtr(at)
			a.HotelID = nil
			a.RoomCategoryID = nil
			return nil
		})
}

func (r memAccommodationRepo) Cancel(ctx context.Context, exec repositories.SQLExecutor, id int, from models.AccommodationStatus, at time.Time) error {
	return r.update(id,
		func(a models.AccommodationRequest) bool {
			return a.Status == from && a.CheckInStatus == models.CheckInPending
		},
		func(a *models.AccommodationRequest) error {
			a.Status = models.AccommodationCancelled
			a.HotelID = nil
			a.RoomCategoryID = nil
			a.CancelledAt = timePtr(at)
			return nil
		})
}

func (r memAccommodationRepo) CheckIn(ctx context.Context, exec repositories.SQLExecutor, id int, at time.Time) error {
	return r.update(id,
		func(a models.AccommodationRequest) bool {
			return a.Status == models.AccommodationConfirmed && a.CheckInStatus == models.CheckInPending
		},
		func(a *models.AccommodationRequest) error {
			a.CheckInStatus = models.CheckInCheckedIn
			a.ActualCheckInTime = timePtr(at)
			return nil
		})
}

func (r memAccommodationRepo) CheckOut(ctx context.Context, exec repositories.SQLExecutor, id int, at time.Time, early bool, newQRToken string) error {
	return r.update(id,
		func(a models.AccommodationRequest) bool {
			return a.Status == models.AccommodationConfirmed &&
				a.CheckInStatus == models.CheckInCheckedIn &&
				a.CheckOutStatus == models.CheckOutPending
		},
		func(a *models.AccommodationRequest) error {
			a.CheckOutStatus = models.CheckOutCheckedOut
			a.ActualCheckOutTime = timePtr(at)
			a.IsEarlyCheckout = early
			a.QRCode = strPtr(newQRToken)
			return nil
		})
}

func (r memAccommodationRepo) CountByStatus(ctx context.Context) (map[models.AccommodationStatus]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	counts := map[models.AccommodationStatus]int{}
	for _, a := range r.s.accommodations {
		counts[a.Status]++
	}
	return counts, nil
}

func (r memAccommodationRepo) CountCheckedIn(ctx context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, a := range r.s.accommodations {
		if a.Status == models.AccommodationConfirmed && a.CheckInStatus == models.CheckInCheckedIn && a.CheckOutStatus == models.CheckOutPending {
			n++
		}
	}
	return n, nil
}

func (r memAccommodationRepo) ListTeamsLackingBookings(ctx context.Context) ([]*models.TeamBookingGap, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	gaps := make([]*models.TeamBookingGap, 0)
	for _, tr := range r.s.teamRequests {
		if tr.Status != models.TeamRequestApproved {
			continue
		}
		g := &models.TeamBookingGap{TeamRequestID: tr.ID, TeamName: tr.TeamName}
		for _, m := range r.s.members {
			if m.TeamRequestID != tr.ID || !m.RequiresAccommodation {
				continue
			}
			g.RequiringMembers++
			for _, a := range r.s.accommodations {
				if a.TeamMemberID == m.ID && a.Status == models.AccommodationConfirmed {
					g.ConfirmedCount++
				}
			}
		}
		if g.ConfirmedCount < g.RequiringMembers {
			g.MissingCount = g.RequiringMembers - g.ConfirmedCount
			gaps = append(gaps, g)
		}
	}
	sort.Slice(gaps, func(i, j int) bool { return gaps[i].TeamRequestID < gaps[j].TeamRequestID })
	return gaps, nil
}

// --- RoomCategoryRepository ---

type memRoomRepo struct{ s *memStore }

func (r memRoomRepo) Create(ctx context.Context, rc *models.RoomCategory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.hotels[rc.HotelID]; !ok {
		return repositories.ErrRoomCategoryHotelInvalid
	}
	rc.ID = r.s.id()
	r.s.rooms[rc.ID] = *rc
	return nil
}

func (r memRoomRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.RoomCategory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rc, ok := r.s.rooms[id]
	if !ok {
		return nil, repositories.ErrRoomCategoryNotFound
	}
	return &rc, nil
}

func (r memRoomRepo) ListByHotels(ctx context.Context, exec repositories.SQLExecutor, hotelIDs []int) ([]*models.RoomCategory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*models.RoomCategory, 0)
	for _, rc := range r.s.rooms {
		if containsInt(hotelIDs, rc.HotelID) {
			rc := rc
			out = append(out, &rc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memRoomRepo) Reserve(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rc, ok := r.s.rooms[id]
	if !ok || rc.AvailableRooms <= 0 {
		return repositories.ErrNoRoomsAvailable
	}
	rc.AvailableRooms--
	r.s.rooms[id] = rc
	return nil
}

func (r memRoomRepo) Release(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rc, ok := r.s.rooms[id]
	if !ok || rc.AvailableRooms >= rc.TotalRooms {
		return repositories.ErrRoomReleaseOverflow
	}
	rc.AvailableRooms++
	r.s.rooms[id] = rc
	return nil
}

// --- HotelRepository ---

type memHotelRepo struct{ s *memStore }

func (r memHotelRepo) Create(ctx context.Context, h *models.Hotel) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if h.ClusterID != nil {
		if _, ok := r.s.clusters[*h.ClusterID]; !ok {
			return repositories.ErrHotelClusterInvalid
		}
	}
	h.ID = r.s.id()
	r.s.hotels[h.ID] = *h
	return nil
}

func (r memHotelRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Hotel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	h, ok := r.s.hotels[id]
	if !ok {
		return nil, repositories.ErrHotelNotFound
	}
	return &h, nil
}

func (r memHotelRepo) ListByCluster(ctx context.Context, exec repositories.SQLExecutor, clusterID int, approvedOnly bool) ([]*models.Hotel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*models.Hotel, 0)
	for _, h := range r.s.hotels {
		if h.ClusterID == nil || *h.ClusterID != clusterID {
			continue
		}
		if approvedOnly && h.Approval != models.HotelApprovalApproved {
			continue
		}
		h := h
		out = append(out, &h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memHotelRepo) ListByManager(ctx context.Context, managerID int) ([]*models.Hotel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*models.Hotel, 0)
	for _, h := range r.s.hotels {
		if h.ManagerID == managerID {
			h := h
			out = append(out, &h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memHotelRepo) UpdateApproval(ctx context.Context, id int, approval models.HotelApproval) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	h, ok := r.s.hotels[id]
	if !ok {
		return repositories.ErrHotelNotFound
	}
	h.Approval = approval
	r.s.hotels[id] = h
	return nil
}

// --- ClusterRepository ---

type memClusterRepo struct{ s *memStore }

func (r memClusterRepo) Create(ctx context.Context, c *models.HotelCluster) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.clusters {
		if existing.Name == c.Name {
			return repositories.ErrClusterNameConflict
		}
	}
	c.ID = r.s.id()
	r.s.clusters[c.ID] = *c
	return nil
}

func (r memClusterRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.HotelCluster, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.clusters[id]
	if !ok {
		return nil, repositories.ErrClusterNotFound
	}
	return &c, nil
}

func (r memClusterRepo) List(ctx context.Context, tournamentID *int) ([]*models.HotelCluster, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*models.HotelCluster, 0)
	for _, c := range r.s.clusters {
		if tournamentID != nil && (c.TournamentID == nil || *c.TournamentID != *tournamentID) {
			continue
		}
		c := c
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memClusterRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.clusters[id]; !ok {
		return repositories.ErrClusterNotFound
	}
	for hid, h := range r.s.hotels {
		if h.ClusterID != nil && *h.ClusterID == id {
			h.ClusterID = nil
			r.s.hotels[hid] = h
		}
	}
	delete(r.s.clusters, id)
	return nil
}

// --- TeamRequestRepository ---

type memTeamRequestRepo struct{ s *memStore }

func (r memTeamRequestRepo) Create(ctx context.Context, exec repositories.SQLExecutor, tr *models.TeamRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if tr.PreferredClusterID != nil {
		if _, ok := r.s.clusters[*tr.PreferredClusterID]; !ok {
			return repositories.ErrTeamRequestClusterInvalid
		}
	}
	tr.ID = r.s.id()
	stored := *tr
	stored.Members = nil
	r.s.teamRequests[tr.ID] = stored
	for i := range tr.Members {
		tr.Members[i].ID = r.s.id()
		tr.Members[i].TeamRequestID = tr.ID
		r.s.members[tr.Members[i].ID] = tr.Members[i]
	}
	return nil
}

func (r memTeamRequestRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.TeamRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	tr, ok := r.s.teamRequests[id]
	if !ok {
		return nil, repositories.ErrTeamRequestNotFound
	}
	return &tr, nil
}

func (r memTeamRequestRepo) List(ctx context.Context, status *models.TeamRequestStatus) ([]*models.TeamRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*models.TeamRequest, 0)
	for _, tr := range r.s.teamRequests {
		if status != nil && tr.Status != *status {
			continue
		}
		tr := tr
		out = append(out, &tr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memTeamRequestRepo) ListMembers(ctx context.Context, exec repositories.SQLExecutor, teamRequestID int) ([]*models.TeamMember, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*models.TeamMember, 0)
	for _, m := range r.s.members {
		if m.TeamRequestID == teamRequestID {
			m := m
			out = append(out, &m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memTeamRequestRepo) GetMember(ctx context.Context, exec repositories.SQLExecutor, memberID int) (*models.TeamMember, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.members[memberID]
	if !ok {
		return nil, repositories.ErrTeamMemberNotFound
	}
	return &m, nil
}

func (r memTeamRequestRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, from, to models.TeamRequestStatus, reviewedBy int, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	tr, ok := r.s.teamRequests[id]
	if !ok {
		return repositories.ErrTeamRequestNotFound
	}
	if tr.Status != from {
		return repositories.ErrTeamRequestStateConflict
	}
	tr.Status = to
	tr.ReviewedBy = intPtr(reviewedBy)
	tr.ReviewedAt = timePtr(at)
	r.s.teamRequests[id] = tr
	return nil
}

// --- прочие зависимости ---

// scriptedCodes сначала отдаёт заданные коды, потом сгенерированные.
type scriptedCodes struct {
	mu    sync.Mutex
	codes []string
	n     int
	qr    int
}

func (c *scriptedCodes) NewConfirmationCode() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.codes) > 0 {
		code := c.codes[0]
		c.codes = c.codes[1:]
		return code, nil
	}
	c.n++
	return fmt.Sprintf("TA-GEN%04d", c.n), nil
}

func (c *scriptedCodes) NewQRToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.qr++
	return fmt.Sprintf("qr-%d", c.qr)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.AccommodationEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, event models.AccommodationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

func (p *recordingPublisher) last(eventType string) (models.AccommodationEvent, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := len(p.events) - 1; i >= 0; i-- {
		if p.events[i].Type == eventType {
			return p.events[i], true
		}
	}
	return models.AccommodationEvent{}, false
}

type recordingMailer struct {
	mu        sync.Mutex
	confirmed []string
	receipts  []string
}

func (m *recordingMailer) SendBookingConfirmedEmail(to, guestName, confirmationCode string, checkIn, checkOut time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.confirmed = append(m.confirmed, to+" "+confirmationCode)
	return nil
}

func (m *recordingMailer) SendCheckoutReceiptEmail(to, guestName string, checkedOutAt time.Time, early bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.receipts = append(m.receipts, fmt.Sprintf("%s early=%t", to, early))
	return nil
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func intPtr(v int) *int              { return &v }
func strPtr(v string) *string        { return &v }
func timePtr(v time.Time) *time.Time { return &v }
