package recordsource

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/okian/labsite/internal/domain/dedupe"
	"github.com/okian/labsite/internal/domain/model"
	"github.com/okian/labsite/internal/domain/status"
	"github.com/okian/labsite/pkg/fsutil"
	"github.com/okian/labsite/pkg/logger"
	"github.com/okian/labsite/pkg/metrics"
)

// Members holds every member record keyed by member id.
type Members struct {
	Info       map[model.MemberID]model.MemberInfo
	Order      []model.MemberID
	Education  map[model.MemberID][]model.EducationRecord
	Experience map[model.MemberID][]model.ExperienceRecord
	Projects   map[model.MemberID][]model.ProjectRecord
	Awards     map[model.MemberID][]model.Award
	Outreach   map[model.MemberID][]model.Outreach
	Documents  map[model.MemberID][]model.Document
}

func newMembers() *Members {
	return &Members{
		Info:       make(map[model.MemberID]model.MemberInfo),
		Education:  make(map[model.MemberID][]model.EducationRecord),
		Experience: make(map[model.MemberID][]model.ExperienceRecord),
		Projects:   make(map[model.MemberID][]model.ProjectRecord),
		Awards:     make(map[model.MemberID][]model.Award),
		Outreach:   make(map[model.MemberID][]model.Outreach),
		Documents:  make(map[model.MemberID][]model.Document),
	}
}

// StatusInput exposes the records the classifier needs.
func (m *Members) StatusInput() status.Input {
	return status.Input{
		Members:    m.Info,
		Education:  m.Education,
		Experience: m.Experience,
		Projects:   m.Projects,
		Order:      m.Order,
	}
}

// LoadMembers reads members/<dir>/info.json and the detail tables under
// members/<dir>/jsons. Broken members are logged and skipped; a missing
// members directory or an empty result is an error.
func (s *Source) LoadMembers(ctx context.Context) (*Members, error) {
	root := filepath.Join(s.dataDir, membersDir)
	s.log.Info(ctx, "loading members", logger.String("dir", root))

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("%w: members directory %s: %w", ErrLoad, root, err)
	}

	out := newMembers()
	ids := dedupe.NewInMemoryDeduper()
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("load members: %w", err)
		}
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		info, err := s.loadInfo(ctx, dir)
		if err != nil {
			s.log.Error(ctx, "skipping member", logger.String("dir", entry.Name()), logger.Error(err))
			metrics.RecordDropped("member", "invalid")
			continue
		}
		if seen, owner := ids.SeenAndRecord(string(info.ID), entry.Name()); seen {
			s.log.Warn(ctx, "duplicate member id, skipping",
				logger.String("member", string(info.ID)),
				logger.String("dir", entry.Name()),
				logger.String("first_dir", owner))
			metrics.RecordDropped("member", "duplicate")
			continue
		}
		s.loadDetails(ctx, dir, info.ID, out)
		out.Info[info.ID] = info
		out.Order = append(out.Order, info.ID)
	}

	if len(out.Order) == 0 {
		return nil, fmt.Errorf("%w: %w under %s", ErrLoad, ErrNoMembers, root)
	}
	metrics.RecordLoaded("member", len(out.Order))
	s.log.Info(ctx, "loaded members", logger.Int("members", len(out.Order)), logger.Int("claimed_ids", ids.Size()))
	return out, nil
}

func (s *Source) loadInfo(ctx context.Context, dir string) (model.MemberInfo, error) {
	var info model.MemberInfo
	if err := readJSON(filepath.Join(dir, infoFile), &info); err != nil {
		return info, err
	}
	if info.ID == "" {
		return info, fmt.Errorf("%w: id in %s", ErrMissingField, filepath.Join(dir, infoFile))
	}
	if info.FirstName == "" || info.LastName == "" {
		s.log.Warn(ctx, "member is missing a name field",
			logger.String("member", string(info.ID)),
			logger.String("first_name", info.FirstName),
			logger.String("last_name", info.LastName))
	}
	info.Dir = filepath.Base(dir)

	social := model.SocialLinks{}
	path := filepath.Join(dir, detailDir, "social_links.json")
	if err := readJSON(path, &social); err != nil && !errors.Is(err, ErrMissingFile) {
		s.log.Warn(ctx, "ignoring social links", logger.String("member", string(info.ID)), logger.Error(err))
	}
	info.Social = social
	return info, nil
}

func (s *Source) loadDetails(ctx context.Context, dir string, id model.MemberID, out *Members) {
	details := filepath.Join(dir, detailDir)

	edu := loadTable[model.EducationRecord](ctx, s, details, "education", id)
	for i := range edu {
		edu[i].MemberID = id
	}
	exp := loadTable[model.ExperienceRecord](ctx, s, details, "experiences", id)
	for i := range exp {
		exp[i].MemberID = id
	}
	projects := loadTable[model.ProjectRecord](ctx, s, details, "projects", id)
	for i := range projects {
		projects[i].MemberID = id
	}

	setIfAny(out.Education, id, edu)
	setIfAny(out.Experience, id, exp)
	setIfAny(out.Projects, id, projects)
	setIfAny(out.Awards, id, loadTable[model.Award](ctx, s, details, "awards", id))
	setIfAny(out.Outreach, id, loadTable[model.Outreach](ctx, s, details, "outreach", id))
	setIfAny(out.Documents, id, loadTable[model.Document](ctx, s, details, "documents", id))
}

// loadTable reads <name>.json, falling back to <name>.csv. A missing table
// is empty; an unreadable one is logged and treated as empty.
func loadTable[T any](ctx context.Context, s *Source, dir, name string, id model.MemberID) []T {
	var (
		recs []T
		err  error
	)
	jsonPath := filepath.Join(dir, name+".json")
	csvPath := filepath.Join(dir, name+".csv")
	switch {
	case fsutil.Exists(jsonPath):
		err = readJSON(jsonPath, &recs)
	case fsutil.Exists(csvPath):
		recs, err = readCSVTable[T](csvPath)
	default:
		return nil
	}
	if err != nil {
		s.log.Warn(ctx, "ignoring member table",
			logger.String("member", string(id)),
			logger.String("table", name),
			logger.Error(err))
		metrics.RecordDropped(name, "invalid")
		return nil
	}
	metrics.RecordLoaded(name, len(recs))
	return recs
}

func setIfAny[T any](m map[model.MemberID][]T, id model.MemberID, recs []T) {
	if len(recs) > 0 {
		m[id] = recs
	}
}
