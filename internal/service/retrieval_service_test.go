package service

import (
	"context"
	"testing"

	"github.com/Mithun-AM/Exam-allocation-system/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func adminQuery(text string) Query {
	return Query{Text: text, Role: models.RoleAdmin, ActingUserName: "System Admin"}
}

func facultyQuery(text, name string, facultyID uuid.UUID) Query {
	return Query{
		Text:           text,
		Role:           models.RoleFaculty,
		ActingUserID:   &facultyID,
		ActingUserName: name,
	}
}

func TestRoute_EmptyResultSetsAreOmitted(t *testing.T) {
	store := &mockDataStore{}
	svc := NewRetrievalService(store, zap.NewNop())

	for _, intent := range []Intent{
		IntentExamInfo, IntentFacultyAllocation, IntentRoomInfo,
		IntentStudentAllocation, IntentFacultyInfo, IntentSystemStats, IntentGeneral,
	} {
		classification := IntentClassification{Intent: intent, TimePeriod: TimeNone, Entities: map[string]string{}}
		bundle := svc.Route(context.Background(), classification, adminQuery("anything"))
		for key := range bundle.Data {
			if bundle.Data[key] == nil {
				t.Errorf("intent %s stored a nil dataset %s", intent, key)
			}
		}
		if intent != IntentSystemStats && len(bundle.Data) != 0 {
			t.Errorf("intent %s with empty store should produce an empty bundle, got %v", intent, bundle.Data)
		}
	}
}

func TestRoute_RoomInfoWithoutRoomNumberSkipsAllocations(t *testing.T) {
	store := &mockDataStore{
		rooms: []models.Room{{ID: uuid.New(), Number: "101", Building: "Main Block"}},
	}
	svc := NewRetrievalService(store, zap.NewNop())

	classification := IntentClassification{
		Intent:   IntentRoomInfo,
		Entities: map[string]string{"examName": "Midterm"},
	}
	bundle := svc.Route(context.Background(), classification, adminQuery("What rooms are assigned for the Midterm exam?"))

	if _, ok := bundle.Data[DatasetRooms]; !ok {
		t.Fatal("rooms dataset should be present")
	}
	if len(bundle.Data) != 1 {
		t.Errorf("expected rooms only, got %v", bundle.Data)
	}
	if len(store.allocationCalls) != 0 || len(store.roomAllocationCalls) != 0 {
		t.Error("no room number given, allocation lookups must not run")
	}
}

func TestRoute_RoomInfoWithRoomNumberFetchesSeatingAndDuties(t *testing.T) {
	store := &mockDataStore{
		rooms:           []models.Room{{ID: uuid.New(), Number: "204"}},
		allocations:     []models.FacultyAllocation{{ID: uuid.New()}},
		roomAllocations: []models.RoomAllocation{{ID: uuid.New()}},
	}
	svc := NewRetrievalService(store, zap.NewNop())

	classification := IntentClassification{
		Intent:   IntentRoomInfo,
		Entities: map[string]string{"roomNumber": "204"},
	}
	bundle := svc.Route(context.Background(), classification, adminQuery("Who is in room 204?"))

	for _, key := range []Dataset{DatasetRooms, DatasetAllocations, DatasetRoomAllocations} {
		if _, ok := bundle.Data[key]; !ok {
			t.Errorf("dataset %s should be present", key)
		}
	}
}

func TestRoute_FacultyAllocationResolvesSelfFromSession(t *testing.T) {
	facultyID := uuid.New()
	store := &mockDataStore{
		allocations: []models.FacultyAllocation{{ID: uuid.New()}},
	}
	svc := NewRetrievalService(store, zap.NewNop())

	classification := IntentClassification{
		Intent:     IntentFacultyAllocation,
		TimePeriod: TimeFuture,
		Entities:   map[string]string{},
	}
	bundle := svc.Route(context.Background(), classification, facultyQuery("What are my duties next week?", "Dr. Rao", facultyID))

	if len(store.allocationCalls) != 1 {
		t.Fatalf("expected one allocation lookup, got %d", len(store.allocationCalls))
	}
	call := store.allocationCalls[0]
	if call.FacultyID == nil || *call.FacultyID != facultyID {
		t.Error("faculty ID must resolve from the caller, not the entities")
	}
	if !call.Time.Upcoming {
		t.Error("future time period should translate to the upcoming flag")
	}
	if _, ok := bundle.Data[DatasetAllocations]; !ok {
		t.Error("allocations dataset should be present")
	}
	if len(store.facultyCalls) != 0 {
		t.Error("no faculty name slot, profile lookup must not run")
	}
}

func TestRoute_FacultyAllocationWithNameKeepsSlotFilter(t *testing.T) {
	facultyID := uuid.New()
	store := &mockDataStore{
		allocations: []models.FacultyAllocation{{ID: uuid.New()}},
		faculty:     []models.Faculty{{ID: uuid.New(), Name: "Prof. Suresh Kumar"}},
	}
	svc := NewRetrievalService(store, zap.NewNop())

	classification := IntentClassification{
		Intent:   IntentFacultyAllocation,
		Entities: map[string]string{"facultyName": "Suresh"},
	}
	bundle := svc.Route(context.Background(), classification, facultyQuery("When does Suresh invigilate?", "Dr. Rao", facultyID))

	call := store.allocationCalls[0]
	if call.FacultyID != nil {
		t.Error("named faculty lookups must not be rescoped to the caller")
	}
	if call.FacultyName != "Suresh" {
		t.Errorf("expected faculty name filter, got %q", call.FacultyName)
	}
	if _, ok := bundle.Data[DatasetFaculty]; !ok {
		t.Error("named faculty should include the profile dataset")
	}
}

func TestRoute_StudentAllocationTwoHopForFaculty(t *testing.T) {
	facultyID := uuid.New()
	store := &mockDataStore{
		allocations: []models.FacultyAllocation{
			{ID: uuid.New(), Room: models.ResolvedRef(&models.Room{ID: uuid.New(), Number: "204"})},
			{ID: uuid.New(), Room: models.ResolvedRef(&models.Room{ID: uuid.New(), Number: "204"})},
		},
		roomAllocations: []models.RoomAllocation{{ID: uuid.New()}},
	}
	svc := NewRetrievalService(store, zap.NewNop())

	classification := IntentClassification{Intent: IntentStudentAllocation, Entities: map[string]string{}}
	bundle := svc.Route(context.Background(), classification, facultyQuery("Which students sit in my rooms?", "Dr. Rao", facultyID))

	if len(store.roomAllocationCalls) != 1 {
		t.Fatalf("expected one seating lookup, got %d", len(store.roomAllocationCalls))
	}
	got := store.roomAllocationCalls[0].RoomNumbers
	if len(got) != 1 || got[0] != "204" {
		t.Errorf("second hop should be scoped to the resolved room numbers, got %v", got)
	}
	if _, ok := bundle.Data[DatasetFacultyRoomStudents]; !ok {
		t.Error("two-hop results should land in the facultyRoomStudents dataset")
	}
}

func TestRoute_StudentAllocationDirectWhenRoomNamed(t *testing.T) {
	facultyID := uuid.New()
	store := &mockDataStore{
		roomAllocations: []models.RoomAllocation{{ID: uuid.New()}},
	}
	svc := NewRetrievalService(store, zap.NewNop())

	classification := IntentClassification{
		Intent:   IntentStudentAllocation,
		Entities: map[string]string{"roomNumber": "101"},
	}
	bundle := svc.Route(context.Background(), classification, facultyQuery("Who sits in room 101?", "Dr. Rao", facultyID))

	if len(store.allocationCalls) != 0 {
		t.Error("a named room needs no first hop through own allocations")
	}
	if _, ok := bundle.Data[DatasetStudentAllocations]; !ok {
		t.Error("direct lookups should land in the studentAllocations dataset")
	}
}

func TestRoute_SystemStatsRoleSplit(t *testing.T) {
	facultyID := uuid.New()
	store := &mockDataStore{
		stats:  &models.SystemStats{Exams: 3, Rooms: 12},
		counts: map[string]int64{"total": 8, "upcoming": 2, "past": 6},
	}
	svc := NewRetrievalService(store, zap.NewNop())
	classification := IntentClassification{Intent: IntentSystemStats, Entities: map[string]string{}}

	adminBundle := svc.Route(context.Background(), classification, adminQuery("show stats"))
	if _, ok := adminBundle.Data[DatasetStats]; !ok {
		t.Error("admin should receive the global stats dataset")
	}
	if _, ok := adminBundle.Data[DatasetFacultyStats]; ok {
		t.Error("admin must not receive personal stats")
	}

	facultyBundle := svc.Route(context.Background(), classification, facultyQuery("show my stats", "Dr. Rao", facultyID))
	if _, ok := facultyBundle.Data[DatasetStats]; ok {
		t.Error("faculty must not receive global stats")
	}
	personal, ok := facultyBundle.Data[DatasetFacultyStats].(models.FacultyStats)
	if !ok {
		t.Fatal("faculty should receive the personal stats dataset")
	}
	if personal.TotalAllocations != 8 || personal.UpcomingAllocations != 2 || personal.PastAllocations != 6 {
		t.Errorf("unexpected personal stats: %+v", personal)
	}
}

func TestRoute_FacultyInfoSelfShortCircuit(t *testing.T) {
	facultyID := uuid.New()
	store := &mockDataStore{}
	svc := NewRetrievalService(store, zap.NewNop())

	for _, name := range []string{"", "rao", "Dr. Rao"} {
		classification := IntentClassification{
			Intent:   IntentFacultyInfo,
			Entities: map[string]string{"facultyName": name},
		}
		q := facultyQuery("who am I", "Dr. Rao", facultyID)
		q.ActingEmail = "rao@college.edu"
		bundle := svc.Route(context.Background(), classification, q)

		profile, ok := bundle.Data[DatasetFacultyData].(models.Faculty)
		if !ok {
			t.Fatalf("name %q: self lookup should return the session profile", name)
		}
		if profile.Name != "Dr. Rao" || profile.Email != "rao@college.edu" {
			t.Errorf("name %q: unexpected profile %+v", name, profile)
		}
	}
	if len(store.facultyCalls) != 0 {
		t.Error("self lookups must not hit the database")
	}
}

func TestRoute_FacultyInfoOtherNameQueriesStore(t *testing.T) {
	facultyID := uuid.New()
	store := &mockDataStore{
		faculty: []models.Faculty{{ID: uuid.New(), Name: "Prof. Suresh Kumar"}},
	}
	svc := NewRetrievalService(store, zap.NewNop())

	classification := IntentClassification{
		Intent:   IntentFacultyInfo,
		Entities: map[string]string{"facultyName": "Suresh"},
	}
	bundle := svc.Route(context.Background(), classification, facultyQuery("who is Suresh?", "Dr. Rao", facultyID))

	if len(store.facultyCalls) != 1 {
		t.Fatal("another name should query the store")
	}
	if _, ok := bundle.Data[DatasetFaculty]; !ok {
		t.Error("faculty dataset should be present")
	}
}

func TestRoute_GeneralIncludesSearchAndFacultyDuties(t *testing.T) {
	facultyID := uuid.New()
	store := &mockDataStore{
		searchResults: &models.SearchResults{Exams: []models.Exam{{ID: uuid.New(), Name: "Midterm"}}},
		allocations:   []models.FacultyAllocation{{ID: uuid.New()}},
	}
	svc := NewRetrievalService(store, zap.NewNop())

	classification := IntentClassification{Intent: IntentGeneral, Entities: map[string]string{}}
	bundle := svc.Route(context.Background(), classification, facultyQuery("tell me about exams", "Dr. Rao", facultyID))

	if _, ok := bundle.Data[DatasetSearchResults]; !ok {
		t.Error("general intent should run the keyword search")
	}
	if _, ok := bundle.Data[DatasetFacultyExams]; !ok {
		t.Error("faculty callers should get their own duties appended")
	}
}

func TestRoute_LookupFailureYieldsPartialBundle(t *testing.T) {
	store := &mockDataStore{failAll: true}
	svc := NewRetrievalService(store, zap.NewNop())

	for _, intent := range []Intent{IntentExamInfo, IntentRoomInfo, IntentSystemStats, IntentGeneral} {
		classification := IntentClassification{Intent: intent, Entities: map[string]string{}}
		bundle := svc.Route(context.Background(), classification, adminQuery("anything"))
		if bundle == nil {
			t.Fatalf("intent %s: failures must never drop the bundle", intent)
		}
		if len(bundle.Data) != 0 {
			t.Errorf("intent %s: failed lookups should leave datasets absent", intent)
		}
	}
}

func TestParseIntent_UnknownFallsBackToGeneral(t *testing.T) {
	cases := map[string]Intent{
		"exam_info":    IntentExamInfo,
		" EXAM_INFO ":  IntentExamInfo,
		"system_stats": IntentSystemStats,
		"gibberish":    IntentGeneral,
		"":             IntentGeneral,
	}
	for in, want := range cases {
		if got := ParseIntent(in); got != want {
			t.Errorf("ParseIntent(%q) = %s, want %s", in, got, want)
		}
	}
}
