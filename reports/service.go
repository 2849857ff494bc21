package reports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/character8/medicx-clinic-central-main/databases"
	"github.com/character8/medicx-clinic-central-main/ledger"
	"github.com/character8/medicx-clinic-central-main/models"
)

// OrphanPolicy decides what happens to usage records whose medicine or
// patient row no longer resolves. They are always excluded from aggregates;
// the policy only controls whether callers get to see them.
type OrphanPolicy int

const (
	// DropOrphans silently discards orphaned records, matching the original
	// behavior.
	DropOrphans OrphanPolicy = iota
	// SurfaceOrphans includes orphaned records in the response so the UI can
	// flag them.
	SurfaceOrphans
)

// FetchError wraps any store failure crossing the façade boundary. The
// façade never retries; presenting the failure is the caller's job.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// StockRequest describes one stock mutation appended to a medicine's ledger.
type StockRequest struct {
	MedicineID string `json:"medicine_id"`
	Quantity   int    `json:"quantity"`
	ExpiryDate string `json:"expiry_date,omitempty"`
	CreatedBy  string `json:"created_by,omitempty"`
	UserType   string `json:"user_type,omitempty"`
}

// Service is the read/query façade the handlers and scheduler call. It
// composes the ledger reducer and the grouping engine over the typed
// databases and owns the cross-cutting read policies: quantities are always
// recomputed from the ledger, removals are validated before append, and
// store failures surface as FetchError with no retry.
type Service struct {
	Medicines databases.MedicineDatabase
	Stock     databases.StockEventDatabase
	Usage     databases.UsageDatabase
	Patients  databases.PatientDatabase
	Orphans   OrphanPolicy
}

// GetMedicineWithStock fetches a medicine and its full event history, then
// recomputes total_quantity via the ledger instead of trusting the stored
// cache column. The stored column can drift when events land without a cache
// write-back; recomputation is the authoritative read path.
func (s *Service) GetMedicineWithStock(ctx context.Context, medicineID string) (*models.MedicineWithStock, error) {
	medicine, err := s.Medicines.FindOne(ctx, bson.M{"_id": medicineID})
	if err != nil {
		return nil, &FetchError{Op: "fetch medicine", Err: err}
	}

	events, err := s.Stock.Find(ctx, bson.M{"medicine_id": medicineID})
	if err != nil {
		return nil, &FetchError{Op: "fetch stock history", Err: err}
	}

	derived := ledger.DeriveQuantity(events)
	if err := ledger.CheckIntegrity(medicineID, derived); err != nil {
		zap.S().Warnw("stock ledger integrity violation",
			"medicineID", medicineID,
			"derived", derived,
		)
	}
	medicine.TotalQuantity = derived

	return &models.MedicineWithStock{
		Medicine: *medicine,
		History:  ledger.RunningBalance(events),
	}, nil
}

// AddStock appends an add event and writes the recomputed total back to the
// medicine row as a cache hint.
func (s *Service) AddStock(ctx context.Context, req StockRequest) (*models.StockEvent, error) {
	event := s.newEvent(req, models.StockTypeAdd)
	if _, err := s.Stock.InsertOne(ctx, event); err != nil {
		return nil, &FetchError{Op: "append stock event", Err: err}
	}
	s.writeBackHint(ctx, req.MedicineID)
	return event, nil
}

// RemoveStock derives the current quantity from the full event history,
// validates the removal against it, then appends the remove event. The
// validation is the only guard; the store has no constraint and concurrent
// removals can still race (accepted, documented).
func (s *Service) RemoveStock(ctx context.Context, req StockRequest) (*models.StockEvent, error) {
	events, err := s.Stock.Find(ctx, bson.M{"medicine_id": req.MedicineID})
	if err != nil {
		return nil, &FetchError{Op: "fetch stock history", Err: err}
	}

	current := ledger.DeriveQuantity(events)
	if err := ledger.ValidateRemoval(current, req.Quantity); err != nil {
		return nil, err
	}

	event := s.newEvent(req, models.StockTypeRemove)
	if _, err := s.Stock.InsertOne(ctx, event); err != nil {
		return nil, &FetchError{Op: "append stock event", Err: err}
	}
	s.writeBackHint(ctx, req.MedicineID)
	return event, nil
}

// RecordUsage persists one dispensing occasion: the usage row plus the
// paired remove event. The two writes are sequential and not transactional;
// a failure after the usage insert leaves the ledger short one removal,
// which the nightly reconciliation surfaces.
func (s *Service) RecordUsage(ctx context.Context, usage *models.MedicineUsage) error {
	if usage.ID == "" {
		usage.ID = uuid.NewString()
	}
	if usage.UsageDate == "" {
		usage.UsageDate = time.Now().UTC().Format(time.RFC3339)
	}

	events, err := s.Stock.Find(ctx, bson.M{"medicine_id": usage.MedicineID})
	if err != nil {
		return &FetchError{Op: "fetch stock history", Err: err}
	}
	current := ledger.DeriveQuantity(events)
	if err := ledger.ValidateRemoval(current, usage.QuantityUsed); err != nil {
		return err
	}

	if _, err := s.Usage.InsertOne(ctx, usage); err != nil {
		return &FetchError{Op: "insert usage record", Err: err}
	}

	event := s.newEvent(StockRequest{
		MedicineID: usage.MedicineID,
		Quantity:   usage.QuantityUsed,
		CreatedBy:  usage.CreatedBy,
	}, models.StockTypeRemove)
	if _, err := s.Stock.InsertOne(ctx, event); err != nil {
		zap.S().Errorw("usage recorded but stock event append failed",
			"usageID", usage.ID,
			"medicineID", usage.MedicineID,
			"error", err,
		)
		return &FetchError{Op: "append stock event", Err: err}
	}
	s.writeBackHint(ctx, usage.MedicineID)
	return nil
}

// GroupedUsage fetches usage records, resolves their medicine and patient
// joins in-process, and returns the grouped per-patient-per-day view.
func (s *Service) GroupedUsage(ctx context.Context, f UsageFilters, page, pageSize int) (*models.GroupedUsageResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	sortDesc := options.Find().SetSort(bson.M{"usage_date": -1})
	records, err := s.Usage.Find(ctx, bson.M{}, sortDesc)
	if err != nil {
		return nil, &FetchError{Op: "fetch usage records", Err: err}
	}

	if err := s.resolveJoins(ctx, records); err != nil {
		return nil, err
	}

	groups, orphans := GroupUsage(records, f)
	for _, o := range orphans {
		zap.S().Warnw("dropping usage record with unresolved reference",
			"usageID", o.ID,
			"medicineID", o.MedicineID,
			"patientID", o.PatientID,
		)
	}

	total := int64(len(groups))
	limit := int64(pageSize)
	resp := &models.GroupedUsageResponse{
		Reports: Paginate(groups, page, pageSize),
		Pagination: models.Pagination{
			CurrentPage:  int64(page),
			TotalPages:   (total + limit - 1) / limit,
			TotalRecords: total,
			Limit:        limit,
		},
	}
	if s.Orphans == SurfaceOrphans {
		resp.OrphanedRecords = orphans
	}
	return resp, nil
}

// resolveJoins attaches Medicine and Patient pointers to each record using
// two $in lookups, the way the original page did it.
func (s *Service) resolveJoins(ctx context.Context, records []models.MedicineUsage) error {
	medicineIDs := make([]string, 0, len(records))
	patientIDs := make([]string, 0, len(records))
	seenMedicine := map[string]bool{}
	seenPatient := map[string]bool{}
	for _, r := range records {
		if r.MedicineID != "" && !seenMedicine[r.MedicineID] {
			seenMedicine[r.MedicineID] = true
			medicineIDs = append(medicineIDs, r.MedicineID)
		}
		if r.PatientID != "" && !seenPatient[r.PatientID] {
			seenPatient[r.PatientID] = true
			patientIDs = append(patientIDs, r.PatientID)
		}
	}
	if len(records) == 0 {
		return nil
	}

	medicines, err := s.Medicines.Find(ctx, bson.M{"_id": bson.M{"$in": medicineIDs}})
	if err != nil {
		return &FetchError{Op: "fetch medicines for usage", Err: err}
	}
	patients, err := s.Patients.Find(ctx, bson.M{"_id": bson.M{"$in": patientIDs}})
	if err != nil {
		return &FetchError{Op: "fetch patients for usage", Err: err}
	}

	medicineByID := make(map[string]models.Medicine, len(medicines))
	for _, m := range medicines {
		medicineByID[m.ID] = m
	}
	patientByID := make(map[string]models.Patient, len(patients))
	for _, p := range patients {
		patientByID[p.ID] = p
	}

	for i := range records {
		if m, ok := medicineByID[records[i].MedicineID]; ok {
			medicine := m
			records[i].Medicine = &medicine
		}
		if p, ok := patientByID[records[i].PatientID]; ok {
			patient := p
			records[i].Patient = &patient
		}
	}
	return nil
}

// ReconcileStockCaches recomputes every medicine's quantity from its ledger
// and writes the result back as a hint. Negative derivations are collected
// and returned so the scheduler can log them; they are never clamped.
func (s *Service) ReconcileStockCaches(ctx context.Context) ([]*ledger.DataIntegrityError, error) {
	medicines, err := s.Medicines.Find(ctx, bson.M{})
	if err != nil {
		return nil, &FetchError{Op: "fetch medicines", Err: err}
	}

	var violations []*ledger.DataIntegrityError
	for _, m := range medicines {
		events, err := s.Stock.Find(ctx, bson.M{"medicine_id": m.ID})
		if err != nil {
			zap.S().Errorw("skipping medicine during reconciliation",
				"medicineID", m.ID,
				"error", err,
			)
			continue
		}
		derived := ledger.DeriveQuantity(events)
		if err := ledger.CheckIntegrity(m.ID, derived); err != nil {
			var integrity *ledger.DataIntegrityError
			if errors.As(err, &integrity) {
				violations = append(violations, integrity)
			}
		}
		if derived != m.TotalQuantity {
			s.writeBackHint(ctx, m.ID)
		}
	}
	return violations, nil
}

// writeBackHint refreshes the cached total_quantity column. Best effort: a
// failed hint write is logged and ignored since reads recompute anyway.
func (s *Service) writeBackHint(ctx context.Context, medicineID string) {
	events, err := s.Stock.Find(ctx, bson.M{"medicine_id": medicineID})
	if err != nil {
		zap.S().Warnw("failed to refresh stock cache hint", "medicineID", medicineID, "error", err)
		return
	}
	derived := ledger.DeriveQuantity(events)

	update := bson.M{"$set": bson.M{
		"total_quantity": derived,
		"last_updated":   primitive.NewDateTimeFromTime(time.Now()),
	}}
	if err := s.Medicines.UpdateOne(ctx, bson.M{"_id": medicineID}, update); err != nil {
		zap.S().Warnw("failed to write stock cache hint", "medicineID", medicineID, "error", err)
	}
}

func (s *Service) newEvent(req StockRequest, stockType string) *models.StockEvent {
	return &models.StockEvent{
		ID:         uuid.NewString(),
		MedicineID: req.MedicineID,
		StockType:  stockType,
		Quantity:   req.Quantity,
		ExpiryDate: req.ExpiryDate,
		CreatedBy:  req.CreatedBy,
		UserType:   req.UserType,
		CreatedAt:  primitive.NewDateTimeFromTime(time.Now()),
	}
}
