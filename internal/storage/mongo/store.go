// Package mongo is the document-database entity store. Collections and field names match the
// portal's existing MongoDB data.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/y4d-ngo/beneficiary-portal/internal/domain"
)

// Store keeps projects and registrations in two collections of one database.
type Store struct {
	client        *mongo.Client
	projects      *mongo.Collection
	registrations *mongo.Collection
}

var _ domain.Store = (*Store)(nil)

// emailCollation compares emails case-insensitively, matching rows written before
// emails were normalized.
var emailCollation = &options.Collation{Locale: "en", Strength: 2}

// Connect dials uri, pings the primary and ensures indexes.
func Connect(ctx context.Context, uri, database string, logger *slog.Logger) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	s := NewStore(client, database)
	if err := s.Ping(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	if err := s.EnsureIndexes(ctx); err != nil {
		if !isLegacyIndexConflict(err) {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		logger.Warn("unique email index not built; existing registrations collide case-insensitively",
			"database", database, "error", err)
	}
	return s, nil
}

func NewStore(client *mongo.Client, database string) *Store {
	db := client.Database(database)
	return &Store{
		client:        client,
		projects:      db.Collection(projectsCollection),
		registrations: db.Collection(registrationsCollection),
	}
}

// EnsureIndexes creates the listing indexes and then the case-insensitive unique
// (projectId, email) index admission relies on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.registrations.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create registration indexes: %w", err)
	}
	_, err = s.projects.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create project indexes: %w", err)
	}
	_, err = s.registrations.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "projectId", Value: 1}, {Key: "email", Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetName("projectId_email_unique").
			SetCollation(emailCollation),
	})
	if err != nil {
		return fmt.Errorf("failed to create unique email index: %w", err)
	}
	return nil
}

// isLegacyIndexConflict reports index builds rejected by existing data (duplicate keys) or
// by an older index of the same name with different options.
func isLegacyIndexConflict(err error) bool {
	if mongo.IsDuplicateKeyError(err) {
		return true
	}
	var se mongo.ServerError
	return errors.As(err, &se) && (se.HasErrorCode(85) || se.HasErrorCode(86))
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ids that are not valid ObjectID hex strings cannot exist, so they map to not found.
func parseID(id string, notFound error) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, notFound
	}
	return oid, nil
}

// Projects

func (s *Store) CreateProject(ctx context.Context, p *domain.Project) error {
	doc := toProjectDoc(p)
	if p.ID != "" {
		oid, err := primitive.ObjectIDFromHex(p.ID)
		if err != nil {
			return fmt.Errorf("invalid project id %q: %w", p.ID, err)
		}
		doc.ID = oid
	} else {
		doc.ID = primitive.NewObjectID()
	}
	if _, err := s.projects.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert project: %w", err)
	}
	p.ID = doc.ID.Hex()
	return nil
}

func (s *Store) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	oid, err := parseID(id, domain.ErrProjectNotFound)
	if err != nil {
		return nil, err
	}
	var doc projectDoc
	err = s.projects.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	p := doc.toDomain()
	return &p, nil
}

func projectFilter(f domain.ProjectFilter) bson.M {
	switch f.Status {
	case "":
		return bson.M{}
	case domain.ProjectActive:
		return bson.M{"$or": bson.A{
			bson.M{"status": string(domain.ProjectActive)},
			bson.M{"status": bson.M{"$exists": false}},
		}}
	default:
		return bson.M{"status": string(f.Status)}
	}
}

func (s *Store) ListProjects(ctx context.Context, f domain.ProjectFilter) ([]domain.Project, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := s.projects.Find(ctx, projectFilter(f), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	var docs []projectDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode projects: %w", err)
	}
	out := make([]domain.Project, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (s *Store) CountProjects(ctx context.Context, f domain.ProjectFilter) (int64, error) {
	n, err := s.projects.CountDocuments(ctx, projectFilter(f))
	if err != nil {
		return 0, fmt.Errorf("failed to count projects: %w", err)
	}
	return n, nil
}

func (s *Store) UpdateProject(ctx context.Context, p *domain.Project) error {
	oid, err := parseID(p.ID, domain.ErrProjectNotFound)
	if err != nil {
		return err
	}
	reqs := p.Requirements
	if reqs == nil {
		reqs = []string{}
	}
	update := bson.M{"$set": bson.M{
		"title":               p.Title,
		"shortDescription":    p.ShortDescription,
		"description":         p.Description,
		"location":            p.Location,
		"category":            p.Category,
		"startDate":           p.StartDate,
		"endDate":             p.EndDate,
		"targetBeneficiaries": p.TargetBeneficiaries,
		"status":              string(p.Status),
		"requirements":        reqs,
		"image":               p.Image,
		"updatedAt":           p.UpdatedAt,
	}}
	return s.updateProject(ctx, bson.M{"_id": oid}, update, "update project")
}

func (s *Store) SetProjectStatus(ctx context.Context, id string, status domain.ProjectStatus, now time.Time) error {
	oid, err := parseID(id, domain.ErrProjectNotFound)
	if err != nil {
		return err
	}
	update := bson.M{"$set": bson.M{"status": string(status), "updatedAt": now}}
	return s.updateProject(ctx, bson.M{"_id": oid}, update, "set project status")
}

func (s *Store) DeleteProject(ctx context.Context, id string) error {
	oid, err := parseID(id, domain.ErrProjectNotFound)
	if err != nil {
		return err
	}
	res, err := s.projects.DeleteOne(ctx, bson.M{"_id": oid, "currentBeneficiaries": countIs(0)})
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if res.DeletedCount == 1 {
		return nil
	}
	if _, err := s.GetProject(ctx, id); err != nil {
		return err
	}
	return domain.ErrHasRegistrations
}

// ReserveSlot is a single conditional update: the document only matches while its count is
// below its target, so the increment cannot overshoot.
func (s *Store) ReserveSlot(ctx context.Context, id string, now time.Time) error {
	oid, err := parseID(id, domain.ErrProjectNotFound)
	if err != nil {
		return err
	}
	filter := bson.M{
		"_id":   oid,
		"$expr": bson.M{"$lt": bson.A{"$currentBeneficiaries", "$targetBeneficiaries"}},
	}
	update := bson.M{
		"$inc": bson.M{"currentBeneficiaries": 1},
		"$set": bson.M{"updatedAt": now},
	}
	res, err := s.projects.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to reserve slot: %w", err)
	}
	if res.MatchedCount == 1 {
		return nil
	}
	if _, err := s.GetProject(ctx, id); err != nil {
		return err
	}
	return domain.ErrProjectFull
}

func (s *Store) ReleaseSlot(ctx context.Context, id string, now time.Time) error {
	oid, err := parseID(id, domain.ErrProjectNotFound)
	if err != nil {
		return err
	}
	filter := bson.M{"_id": oid, "currentBeneficiaries": bson.M{"$gt": 0}}
	update := bson.M{
		"$inc": bson.M{"currentBeneficiaries": -1},
		"$set": bson.M{"updatedAt": now},
	}
	res, err := s.projects.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to release slot: %w", err)
	}
	if res.MatchedCount == 1 {
		return nil
	}
	_, err = s.GetProject(ctx, id)
	return err
}

func (s *Store) SetBeneficiaryCount(ctx context.Context, id string, from, to int, now time.Time) (bool, error) {
	oid, err := parseID(id, domain.ErrProjectNotFound)
	if err != nil {
		return false, err
	}
	filter := bson.M{"_id": oid, "currentBeneficiaries": countIs(from)}
	update := bson.M{"$set": bson.M{"currentBeneficiaries": to, "updatedAt": now}}
	res, err := s.projects.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to set beneficiary count: %w", err)
	}
	if res.MatchedCount == 1 {
		return true, nil
	}
	if _, err := s.GetProject(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

// countIs matches a stored count of n. Documents created without the field read as zero.
func countIs(n int) any {
	if n == 0 {
		return bson.M{"$in": bson.A{0, nil}}
	}
	return n
}

func (s *Store) updateProject(ctx context.Context, filter, update bson.M, op string) error {
	res, err := s.projects.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

// Registrations

func (s *Store) CreateRegistration(ctx context.Context, r *domain.Registration) error {
	doc := toRegistrationDoc(r)
	doc.ID = primitive.NewObjectID()
	_, err := s.registrations.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrDuplicateRegistration
	}
	if err != nil {
		return fmt.Errorf("failed to insert registration: %w", err)
	}
	r.ID = doc.ID.Hex()
	r.Email = doc.Email
	return nil
}

func (s *Store) GetRegistration(ctx context.Context, id string) (*domain.Registration, error) {
	oid, err := parseID(id, domain.ErrRegistrationNotFound)
	if err != nil {
		return nil, err
	}
	return s.findOneRegistration(ctx, bson.M{"_id": oid}, domain.ErrRegistrationNotFound)
}

func (s *Store) FindRegistration(ctx context.Context, projectID, email string) (*domain.Registration, error) {
	filter := bson.M{"projectId": projectID, "email": domain.NormalizeEmail(email)}
	return s.findOneRegistration(ctx, filter, nil, options.FindOne().SetCollation(emailCollation))
}

// findOneRegistration returns notFound (which may be nil) when nothing matches.
func (s *Store) findOneRegistration(ctx context.Context, filter bson.M, notFound error, opts ...*options.FindOneOptions) (*domain.Registration, error) {
	var doc registrationDoc
	err := s.registrations.FindOne(ctx, filter, opts...).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get registration: %w", err)
	}
	r := doc.toDomain()
	return &r, nil
}

func registrationFilter(f domain.RegistrationFilter) bson.M {
	filter := bson.M{}
	if f.ProjectID != "" {
		filter["projectId"] = f.ProjectID
	}
	if f.Status != "" {
		filter["status"] = string(f.Status)
	}
	return filter
}

func (s *Store) ListRegistrations(ctx context.Context, f domain.RegistrationFilter) ([]domain.Registration, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := s.registrations.Find(ctx, registrationFilter(f), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}
	var docs []registrationDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode registrations: %w", err)
	}
	out := make([]domain.Registration, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (s *Store) CountRegistrations(ctx context.Context, f domain.RegistrationFilter) (int64, error) {
	n, err := s.registrations.CountDocuments(ctx, registrationFilter(f))
	if err != nil {
		return 0, fmt.Errorf("failed to count registrations: %w", err)
	}
	return n, nil
}

func (s *Store) CompareAndSetStatus(ctx context.Context, id string, from, to domain.RegistrationStatus, now time.Time) (bool, error) {
	oid, err := parseID(id, domain.ErrRegistrationNotFound)
	if err != nil {
		return false, err
	}
	res, err := s.registrations.UpdateOne(ctx,
		bson.M{"_id": oid, "status": string(from)},
		bson.M{"$set": bson.M{"status": string(to), "updatedAt": now}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to set registration status: %w", err)
	}
	if res.MatchedCount == 1 {
		return true, nil
	}
	if _, err := s.GetRegistration(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}
