package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Mithun-AM/Exam-allocation-system/internal/models"
	"github.com/Mithun-AM/Exam-allocation-system/internal/repository"

	"go.uber.org/zap"
)

const defaultLookupLimit = 20

// RetrievalService routes a classified query to structured lookups. Each
// intent maps to its own retrieval function; independent lookups inside a
// branch run concurrently, and any single lookup failure degrades the bundle
// instead of failing the query.
type RetrievalService struct {
	store    DataStore
	logger   *zap.Logger
	handlers map[Intent]retrievalFunc
}

type retrievalFunc func(ctx context.Context, c IntentClassification, q Query, bundle *ContextBundle)

func NewRetrievalService(store DataStore, logger *zap.Logger) *RetrievalService {
	s := &RetrievalService{store: store, logger: logger}
	s.handlers = map[Intent]retrievalFunc{
		IntentExamInfo:          s.retrieveExamInfo,
		IntentFacultyAllocation: s.retrieveFacultyAllocation,
		IntentRoomInfo:          s.retrieveRoomInfo,
		IntentStudentAllocation: s.retrieveStudentAllocation,
		IntentFacultyInfo:       s.retrieveFacultyInfo,
		IntentSystemStats:       s.retrieveSystemStats,
		IntentGeneral:           s.retrieveGeneral,
	}
	return s
}

// Route assembles the context bundle for one classified query. It always
// returns a bundle; a lookup failure inside a branch leaves its dataset
// absent rather than propagating the error.
func (s *RetrievalService) Route(ctx context.Context, c IntentClassification, q Query) *ContextBundle {
	bundle := newContextBundle(c.Intent, q.Role, q.ActingUserName)

	handler, ok := s.handlers[c.Intent]
	if !ok {
		handler = s.retrieveGeneral
	}
	handler(ctx, c, q, bundle)
	return bundle
}

// timeFilter translates the classified period into lookup flags.
func timeFilter(p TimePeriod) repository.TimeFilter {
	switch p {
	case TimeFuture:
		return repository.TimeFilter{Upcoming: true}
	case TimePast:
		return repository.TimeFilter{Past: true}
	case TimePresent:
		return repository.TimeFilter{Today: true}
	default:
		return repository.TimeFilter{}
	}
}

func entityDate(c IntentClassification) *time.Time {
	v := c.Entity("date")
	if v == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return nil
	}
	return &t
}

// runLookups executes independent lookups concurrently. Each lookup stores
// its own result into the bundle on success and logs on failure; the bundle
// map is only written from inside the lookup goroutines, which each touch a
// distinct dataset, so a mutex guards the shared map writes.
func (s *RetrievalService) runLookups(lookups ...func() error) {
	var wg sync.WaitGroup
	for _, lookup := range lookups {
		wg.Add(1)
		go func(fn func() error) {
			defer wg.Done()
			if err := fn(); err != nil {
				s.logger.Warn("Lookup failed, continuing with partial context", zap.Error(err))
			}
		}(lookup)
	}
	wg.Wait()
}

type bundleWriter struct {
	mu     sync.Mutex
	bundle *ContextBundle
}

func (w *bundleWriter) put(fn func(b *ContextBundle)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fn(w.bundle)
}

func (s *RetrievalService) retrieveExamInfo(ctx context.Context, c IntentClassification, q Query, bundle *ContextBundle) {
	w := &bundleWriter{bundle: bundle}
	lookups := []func() error{
		func() error {
			exams, err := s.store.FindExams(ctx, repository.ExamFilter{
				Name:     c.Entity("examName"),
				Year:     c.EntityInt("year"),
				Semester: c.EntityInt("semester"),
				Limit:    defaultLookupLimit,
			})
			if err != nil {
				return err
			}
			w.put(func(b *ContextBundle) { b.putExams(DatasetExams, exams) })
			return nil
		},
	}

	if c.Entity("subjectName") != "" || c.Entity("subjectCode") != "" {
		lookups = append(lookups, func() error {
			subjects, err := s.store.FindSubjects(ctx, repository.SubjectFilter{
				Name:     c.Entity("subjectName"),
				Code:     c.Entity("subjectCode"),
				Semester: c.EntityInt("semester"),
				Limit:    defaultLookupLimit,
			})
			if err != nil {
				return err
			}
			w.put(func(b *ContextBundle) { b.putSubjects(DatasetSubjects, subjects) })
			return nil
		})
	}

	// Faculty callers always see their own duties alongside the exam answer.
	if q.Role == models.RoleFaculty && q.ActingUserID != nil {
		lookups = append(lookups, func() error {
			allocations, err := s.store.FindFacultyAllocations(ctx, repository.AllocationFilter{
				FacultyID: q.ActingUserID,
				Time:      timeFilter(c.TimePeriod),
				Limit:     defaultLookupLimit,
			})
			if err != nil {
				return err
			}
			w.put(func(b *ContextBundle) { b.putAllocations(DatasetFacultyExams, allocations) })
			return nil
		})
	}

	s.runLookups(lookups...)
}

func (s *RetrievalService) retrieveFacultyAllocation(ctx context.Context, c IntentClassification, q Query, bundle *ContextBundle) {
	w := &bundleWriter{bundle: bundle}

	filter := repository.AllocationFilter{
		FacultyName: c.Entity("facultyName"),
		RoomNumber:  c.Entity("roomNumber"),
		Date:        entityDate(c),
		Time:        timeFilter(c.TimePeriod),
		Limit:       defaultLookupLimit,
	}
	// A Faculty caller asking about duties without naming anyone is asking
	// about themselves; the identity comes from the session, not the slots.
	if filter.FacultyName == "" && q.Role == models.RoleFaculty && q.ActingUserID != nil {
		filter.FacultyID = q.ActingUserID
	}

	lookups := []func() error{
		func() error {
			allocations, err := s.store.FindFacultyAllocations(ctx, filter)
			if err != nil {
				return err
			}
			w.put(func(b *ContextBundle) { b.putAllocations(DatasetAllocations, allocations) })
			return nil
		},
	}

	if name := c.Entity("facultyName"); name != "" {
		lookups = append(lookups, func() error {
			faculty, err := s.store.FindFaculty(ctx, repository.FacultyFilter{Name: name, Limit: 5})
			if err != nil {
				return err
			}
			w.put(func(b *ContextBundle) { b.putFaculty(DatasetFaculty, faculty) })
			return nil
		})
	}

	s.runLookups(lookups...)
}

func (s *RetrievalService) retrieveRoomInfo(ctx context.Context, c IntentClassification, q Query, bundle *ContextBundle) {
	w := &bundleWriter{bundle: bundle}
	roomNumber := c.Entity("roomNumber")

	lookups := []func() error{
		func() error {
			rooms, err := s.store.FindRooms(ctx, repository.RoomFilter{
				Number:   roomNumber,
				Building: c.Entity("building"),
				Floor:    c.EntityInt("floor"),
				Limit:    defaultLookupLimit,
			})
			if err != nil {
				return err
			}
			w.put(func(b *ContextBundle) { b.putRooms(DatasetRooms, rooms) })
			return nil
		},
	}

	// Seating and invigilation details only make sense for a concrete room.
	if roomNumber != "" {
		lookups = append(lookups,
			func() error {
				roomAllocations, err := s.store.FindRoomAllocations(ctx, repository.RoomAllocationFilter{
					RoomNumber: roomNumber,
					Date:       entityDate(c),
					Time:       timeFilter(c.TimePeriod),
					Limit:      defaultLookupLimit,
				})
				if err != nil {
					return err
				}
				w.put(func(b *ContextBundle) { b.putRoomAllocations(DatasetRoomAllocations, roomAllocations) })
				return nil
			},
			func() error {
				allocations, err := s.store.FindFacultyAllocations(ctx, repository.AllocationFilter{
					RoomNumber: roomNumber,
					Date:       entityDate(c),
					Time:       timeFilter(c.TimePeriod),
					Limit:      defaultLookupLimit,
				})
				if err != nil {
					return err
				}
				w.put(func(b *ContextBundle) { b.putAllocations(DatasetAllocations, allocations) })
				return nil
			},
		)
	}

	if q.Role == models.RoleFaculty && q.ActingUserID != nil {
		lookups = append(lookups, func() error {
			allocations, err := s.store.FindFacultyAllocations(ctx, repository.AllocationFilter{
				FacultyID: q.ActingUserID,
				Time:      timeFilter(c.TimePeriod),
				Limit:     defaultLookupLimit,
			})
			if err != nil {
				return err
			}
			w.put(func(b *ContextBundle) { b.putAllocations(DatasetFacultyRooms, allocations) })
			return nil
		})
	}

	s.runLookups(lookups...)
}

func (s *RetrievalService) retrieveStudentAllocation(ctx context.Context, c IntentClassification, q Query, bundle *ContextBundle) {
	filter := repository.RoomAllocationFilter{
		RoomNumber:  c.Entity("roomNumber"),
		Semester:    c.EntityInt("semester"),
		StudentUSN:  c.Entity("studentUSN"),
		StudentName: c.Entity("studentName"),
		Date:        entityDate(c),
		Time:        timeFilter(c.TimePeriod),
		Limit:       defaultLookupLimit,
	}

	// Faculty callers who did not name a room get the seating for the rooms
	// they are assigned to: resolve own duties first, then scope by room.
	if filter.RoomNumber == "" && q.Role == models.RoleFaculty && q.ActingUserID != nil {
		ownAllocations, err := s.store.FindFacultyAllocations(ctx, repository.AllocationFilter{
			FacultyID: q.ActingUserID,
			Time:      timeFilter(c.TimePeriod),
			Limit:     defaultLookupLimit,
		})
		if err != nil {
			s.logger.Warn("Lookup failed, continuing with partial context", zap.Error(err))
			return
		}
		roomNumbers := make([]string, 0, len(ownAllocations))
		seen := make(map[string]bool)
		for _, alloc := range ownAllocations {
			if room, ok := alloc.Room.Get(); ok && !seen[room.Number] {
				seen[room.Number] = true
				roomNumbers = append(roomNumbers, room.Number)
			}
		}
		if len(roomNumbers) == 0 {
			return
		}
		filter.RoomNumbers = roomNumbers

		roomAllocations, err := s.store.FindRoomAllocations(ctx, filter)
		if err != nil {
			s.logger.Warn("Lookup failed, continuing with partial context", zap.Error(err))
			return
		}
		bundle.putRoomAllocations(DatasetFacultyRoomStudents, roomAllocations)
		return
	}

	roomAllocations, err := s.store.FindRoomAllocations(ctx, filter)
	if err != nil {
		s.logger.Warn("Lookup failed, continuing with partial context", zap.Error(err))
		return
	}
	bundle.putRoomAllocations(DatasetStudentAllocations, roomAllocations)
}

func (s *RetrievalService) retrieveFacultyInfo(ctx context.Context, c IntentClassification, q Query, bundle *ContextBundle) {
	name := c.Entity("facultyName")

	// Faculty asking about themselves get their session profile directly.
	if q.Role == models.RoleFaculty && q.ActingUserName != "" {
		self := name == "" ||
			strings.Contains(strings.ToLower(q.ActingUserName), strings.ToLower(name))
		if self {
			bundle.Data[DatasetFacultyData] = models.Faculty{
				Name:  q.ActingUserName,
				Email: q.ActingEmail,
			}
			return
		}
	}

	faculty, err := s.store.FindFaculty(ctx, repository.FacultyFilter{
		Name:        name,
		Email:       c.Entity("email"),
		Designation: c.Entity("designation"),
		Limit:       defaultLookupLimit,
	})
	if err != nil {
		s.logger.Warn("Lookup failed, continuing with partial context", zap.Error(err))
		return
	}
	bundle.putFaculty(DatasetFaculty, faculty)
}

func (s *RetrievalService) retrieveSystemStats(ctx context.Context, c IntentClassification, q Query, bundle *ContextBundle) {
	// Admins get the global counters. Everyone else gets at most a personal
	// subset; the two views never mix.
	if q.Role == models.RoleAdmin {
		stats, err := s.store.GetSystemStats(ctx)
		if err != nil {
			s.logger.Warn("Lookup failed, continuing with partial context", zap.Error(err))
			return
		}
		if stats != nil {
			bundle.Data[DatasetStats] = stats
		}
		return
	}

	if q.Role != models.RoleFaculty || q.ActingUserID == nil {
		return
	}

	var personal models.FacultyStats
	counts := []struct {
		dest *int64
		time repository.TimeFilter
	}{
		{&personal.TotalAllocations, repository.TimeFilter{}},
		{&personal.UpcomingAllocations, repository.TimeFilter{Upcoming: true}},
		{&personal.PastAllocations, repository.TimeFilter{Past: true}},
	}
	for _, c := range counts {
		n, err := s.store.CountFacultyAllocations(ctx, repository.AllocationFilter{
			FacultyID: q.ActingUserID,
			Time:      c.time,
		})
		if err != nil {
			s.logger.Warn("Lookup failed, continuing with partial context", zap.Error(err))
			return
		}
		*c.dest = n
	}
	bundle.Data[DatasetFacultyStats] = personal
}

func (s *RetrievalService) retrieveGeneral(ctx context.Context, c IntentClassification, q Query, bundle *ContextBundle) {
	w := &bundleWriter{bundle: bundle}
	lookups := []func() error{
		func() error {
			results, err := s.store.SearchAll(ctx, q.Text, 10)
			if err != nil {
				return err
			}
			w.put(func(b *ContextBundle) { b.putSearchResults(results) })
			return nil
		},
	}

	if q.Role == models.RoleFaculty && q.ActingUserID != nil {
		lookups = append(lookups, func() error {
			allocations, err := s.store.FindFacultyAllocations(ctx, repository.AllocationFilter{
				FacultyID: q.ActingUserID,
				Limit:     defaultLookupLimit,
			})
			if err != nil {
				return err
			}
			w.put(func(b *ContextBundle) { b.putAllocations(DatasetFacultyExams, allocations) })
			return nil
		})
	}

	s.runLookups(lookups...)
}
