package pipeline

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/wayfarerlabs/portage/internal/models"
	"github.com/wayfarerlabs/portage/internal/shared"
)

// Transformer converts exported source records into destination-shaped
// records, enforcing the cross-collection invariants: identifiers preserved
// verbatim, documented defaults for every optional field, and one
// normalization function per loosely-typed field.
type Transformer struct {
	logger *log.Logger
}

// TransformOpts contains configuration for a transform run.
type TransformOpts struct {
	ExportDir string    // Exporter output to read
	OutputDir string    // Destination for transformed files and the summary
	Now       time.Time // Run timestamp, used as the documented fallback for missing dates; zero means time.Now
}

// NewTransformer creates a Transformer.
func NewTransformer(logger *log.Logger) *Transformer {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Transformer{logger: logger}
}

// Run transforms every collection in fixed dependency order and writes
// transform_summary.json. Count mismatches and malformed fields are
// recorded as integrity issues, never raised; discrepancies are surfaced
// for the Validator stage to catch decisively.
func (t *Transformer) Run(progress chan<- ProgressUpdate, opts TransformOpts) (*TransformSummary, error) {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	runTime := opts.Now

	summary := &TransformSummary{
		TransformDate: stamp(runTime),
		Results:       make([]CollectionTransform, 0, len(DestinationOrder)),
		Environment: map[string]string{
			"export_dir": opts.ExportDir,
			"output_dir": opts.OutputDir,
		},
	}

	total := len(DestinationOrder)
	for i, collection := range DestinationOrder {
		var result CollectionTransform
		switch collection {
		case CollectionUsers:
			result = t.transformUsers(opts, runTime)
		case CollectionClients:
			result = t.transformClients(opts, runTime)
		case CollectionPreferences:
			result = t.transformPreferences(opts, runTime)
		case CollectionMedia:
			result = t.transformMedia(opts, runTime)
		case CollectionTrips:
			result = t.transformTrips(opts, runTime)
		}

		if result.OriginalCount != result.TransformedCount {
			issue := fmt.Sprintf("%s: count mismatch, %d original vs %d transformed",
				collection, result.OriginalCount, result.TransformedCount)
			result.Issues = append(result.Issues, issue)
			summary.IntegrityIssues = append(summary.IntegrityIssues, issue)
		}

		summary.Results = append(summary.Results, result)
		summary.TotalOriginal += result.OriginalCount
		summary.TotalTransformed += result.TransformedCount
		sendProgress(progress, transformCollectionUpdate(i+1, total, collection, result.TransformedCount))
		t.logger.Info("transformed collection",
			"collection", collection,
			"original", result.OriginalCount,
			"transformed", result.TransformedCount,
			"issues", len(result.Issues))
	}

	path := filepath.Join(opts.OutputDir, "transform_summary.json")
	if err := shared.WriteJSONFile(path, summary); err != nil {
		return summary, err
	}
	return summary, nil
}

// transformUsers joins profile rows onto auth registry entries by foreign
// key. A missing profile defaults names to empty strings and the role to
// the least-privileged value; emailVerified is derived from the presence of
// a confirmation timestamp, not the timestamp itself.
func (t *Transformer) transformUsers(opts TransformOpts, runTime time.Time) CollectionTransform {
	result := CollectionTransform{Collection: CollectionUsers}

	authUsers := readExport[models.AuthUser](opts.ExportDir, SourceAuthUsers, &result)
	profiles := readExport[models.Profile](opts.ExportDir, SourceProfiles, &result)
	result.OriginalCount = len(authUsers)

	profilesByUser := make(map[string]models.Profile, len(profiles))
	for _, p := range profiles {
		profilesByUser[p.UserID] = p
	}

	users := make([]models.User, 0, len(authUsers))
	for _, au := range authUsers {
		user := models.User{
			ID:            au.ID,
			Email:         au.Email,
			EmailVerified: au.ConfirmedAt != "",
			Role:          "client",
			CreatedAt:     models.NormalizeDate(au.CreatedAt, runTime),
			UpdatedAt:     models.NormalizeDate(au.UpdatedAt, runTime),
		}
		if profile, ok := profilesByUser[au.ID]; ok {
			user.FirstName = profile.FirstName
			user.LastName = profile.LastName
			user.Phone = profile.Phone
			user.Role = models.NormalizeRole(profile.Role)
			user.Avatar = profile.AvatarURL
		}
		users = append(users, user)
	}

	writeCollection(t, opts.OutputDir, CollectionUsers, users, &result)
	return result
}

// transformClients applies direct field renames with documented defaults
// for every optional business field. A null optional upstream field never
// fails a record.
func (t *Transformer) transformClients(opts TransformOpts, runTime time.Time) CollectionTransform {
	result := CollectionTransform{Collection: CollectionClients}

	source := readExport[models.SourceClient](opts.ExportDir, SourceClients, &result)
	result.OriginalCount = len(source)

	clients := make([]models.Client, 0, len(source))
	for _, sc := range source {
		client := models.Client{
			ID:           sc.ID,
			User:         sc.UserID,
			Tier:         models.NormalizeTier(sc.Tier),
			Status:       models.NormalizeStatus(sc.Status),
			CompanyName:  sc.CompanyName,
			ContactEmail: sc.ContactEmail,
			ContactPhone: sc.ContactPhone,
			CreatedAt:    models.NormalizeDate(sc.CreatedAt, runTime),
			UpdatedAt:    models.NormalizeDate(sc.UpdatedAt, runTime),
		}
		if sc.LoyaltyPoints != nil {
			client.LoyaltyPoints = *sc.LoyaltyPoints
		}
		clients = append(clients, client)
	}

	writeCollection(t, opts.OutputDir, CollectionClients, clients, &result)
	return result
}

// transformPreferences normalizes notification settings that may arrive as
// a JSON string or object; a missing or malformed field defaults to an
// empty settings object rather than failing the record.
func (t *Transformer) transformPreferences(opts TransformOpts, runTime time.Time) CollectionTransform {
	result := CollectionTransform{Collection: CollectionPreferences}

	source := readExport[models.SourcePreference](opts.ExportDir, SourcePreferences, &result)
	result.OriginalCount = len(source)

	prefs := make([]models.Preference, 0, len(source))
	for _, sp := range source {
		notifications, err := models.NormalizeNotifications(sp.Notifications)
		if err != nil {
			result.Issues = append(result.Issues, fmt.Sprintf("preference %s: %v", sp.ID, err))
			notifications = map[string]any{}
		}
		prefs = append(prefs, models.Preference{
			ID:            sp.ID,
			User:          sp.UserID,
			Language:      sp.Language,
			Theme:         sp.Theme,
			Notifications: notifications,
			CreatedAt:     models.NormalizeDate(sp.CreatedAt, runTime),
			UpdatedAt:     models.NormalizeDate(sp.UpdatedAt, runTime),
		})
	}

	writeCollection(t, opts.OutputDir, CollectionPreferences, prefs, &result)
	return result
}

// transformMedia unifies the two media provenances into one destination
// shape. Blob-storage records get a deterministic identifier derived from
// bucket and object name; trip documents keep their original identifier.
func (t *Transformer) transformMedia(opts TransformOpts, runTime time.Time) CollectionTransform {
	result := CollectionTransform{Collection: CollectionMedia}

	objects := readExport[models.StorageObject](opts.ExportDir, SourceStorageFiles, &result)
	documents := readExport[models.TripDocument](opts.ExportDir, SourceTripDocuments, &result)
	result.OriginalCount = len(objects) + len(documents)

	media := make([]models.Media, 0, result.OriginalCount)
	for _, obj := range objects {
		media = append(media, models.Media{
			ID:        shared.DeriveID(obj.Bucket, obj.Name),
			Source:    models.MediaSourceStorage,
			Filename:  filepath.Base(obj.Name),
			URL:       obj.PublicURL,
			Bucket:    obj.Bucket,
			MimeType:  obj.ContentType,
			Size:      obj.Size,
			CreatedAt: models.NormalizeDate(obj.CreatedAt, runTime),
		})
	}
	for _, doc := range documents {
		media = append(media, models.Media{
			ID:        doc.ID,
			Source:    models.MediaSourceTripDocument,
			Filename:  doc.Filename,
			URL:       doc.URL,
			Trip:      doc.TripID,
			CreatedAt: models.NormalizeDate(doc.CreatedAt, runTime),
		})
	}

	writeCollection(t, opts.OutputDir, CollectionMedia, media, &result)
	return result
}

// transformTrips runs last because trips reference users and clients.
// Destinations and travelers are resolved from their string-or-structured
// union; a malformed field is recorded and defaults to empty rather than
// dropping the trip.
func (t *Transformer) transformTrips(opts TransformOpts, runTime time.Time) CollectionTransform {
	result := CollectionTransform{Collection: CollectionTrips}

	source := readExport[models.SourceTrip](opts.ExportDir, SourceTrips, &result)
	result.OriginalCount = len(source)

	trips := make([]models.Trip, 0, len(source))
	for _, st := range source {
		destinations, err := models.NormalizeDestinations(st.Destinations)
		if err != nil {
			result.Issues = append(result.Issues, fmt.Sprintf("trip %s: %v", st.ID, err))
			destinations = []map[string]any{}
		}
		travelers, err := models.NormalizeTravelers(st.Travelers)
		if err != nil {
			result.Issues = append(result.Issues, fmt.Sprintf("trip %s: %v", st.ID, err))
			travelers = []string{}
		}

		trip := models.Trip{
			ID:           st.ID,
			Title:        st.Title,
			Status:       models.NormalizeStatus(st.Status),
			StartDate:    models.NormalizeDate(st.StartDate, runTime),
			EndDate:      models.NormalizeDate(st.EndDate, runTime),
			Destinations: destinations,
			Travelers:    travelers,
			Currency:     st.Currency,
			Client:       st.ClientID,
			Organizer:    st.OrganizerID,
			CreatedBy:    st.CreatedBy,
			CreatedAt:    models.NormalizeDate(st.CreatedAt, runTime),
			UpdatedAt:    models.NormalizeDate(st.UpdatedAt, runTime),
		}
		if st.Budget != nil {
			trip.Budget = *st.Budget
		}
		trips = append(trips, trip)
	}

	writeCollection(t, opts.OutputDir, CollectionTrips, trips, &result)
	return result
}

// readExport loads one exported snapshot. A missing or malformed file is
// recorded as an issue and yields an empty slice so the run continues.
func readExport[T any](dir, name string, result *CollectionTransform) []T {
	var records []T
	if err := shared.ReadJSONFile(filepath.Join(dir, name+".json"), &records); err != nil {
		result.Issues = append(result.Issues, fmt.Sprintf("read %s: %v", name, err))
		return nil
	}
	return records
}

// writeCollection persists one transformed collection. A write failure is
// recorded as an issue; the run continues with the remaining collections.
func writeCollection[T any](t *Transformer, dir, name string, records []T, result *CollectionTransform) {
	if err := shared.WriteJSONFile(filepath.Join(dir, name+".json"), records); err != nil {
		t.logger.Error("transformed collection write failed", "collection", name, "err", err)
		result.Issues = append(result.Issues, fmt.Sprintf("write %s: %v", name, err))
		return
	}
	result.TransformedCount = len(records)
}
