// Package status classifies group members as current or alumni, resolves
// their display role and orders current members by the role hierarchy.
package status

import (
	"context"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/okian/labsite/internal/domain/model"
	"github.com/okian/labsite/internal/domain/types"
	"github.com/okian/labsite/pkg/logger"
)

// UnrankedRank is the rank reported for roles missing from the hierarchy.
const UnrankedRank = 999

// Academic roles derived from education at the home institution.
const (
	RoleUndergraduate = "Undergraduate Student"
	RoleGraduate      = "Graduate Student"
)

// Policy decides the fate of members that have neither education nor
// experience records.
type Policy string

// Supported policies.
const (
	PolicyExclude Policy = "exclude"
	PolicyAlumni  Policy = "alumni"
)

// Valid reports whether p is a known policy.
func (p Policy) Valid() bool { return p == PolicyExclude || p == PolicyAlumni }

// DefaultDegreeRoles maps degree levels to academic roles.
func DefaultDegreeRoles() map[string]string {
	return map[string]string{
		model.DegreeBachelors: RoleUndergraduate,
		model.DegreeMasters:   RoleGraduate,
		model.DegreePhD:       RoleGraduate,
	}
}

// DefaultRoleMap is the display remap applied to resolved roles.
func DefaultRoleMap() map[string]string {
	return map[string]string{
		"Assistant Professor":    "Professor",
		"Professorial Assistant": "Undergraduate Student",
		"Visiting Researcher":    "Postdoctoral Researcher",
	}
}

// Input holds the loaded records keyed by member id. Order is the member
// load order; it fixes iteration order and the alumni output order.
type Input struct {
	Members    map[model.MemberID]model.MemberInfo
	Education  map[model.MemberID][]model.EducationRecord
	Experience map[model.MemberID][]model.ExperienceRecord
	Projects   map[model.MemberID][]model.ProjectRecord
	Order      []model.MemberID
}

// Classification is the immutable outcome for one member.
type Classification struct {
	ID           model.MemberID
	Current      bool
	Role         string
	ProjectTitle string
	Rank         int
	Ranked       bool
}

// Result is the outcome of one classification run.
type Result struct {
	// Current is ordered by hierarchy rank, unranked roles last.
	Current []types.CurrentMember
	// Alumni keeps member load order.
	Alumni []types.AlumniMember
	// ByID holds every decided member.
	ByID map[model.MemberID]Classification
	// Undecided lists members without any education or experience.
	Undecided []model.MemberID
	// Issues collects the recoverable problems found on the way.
	Issues []error
}

// IsCurrent reports whether id was classified as a current member.
func (r Result) IsCurrent(id model.MemberID) bool {
	c, ok := r.ByID[id]
	return ok && c.Current
}

// Classifier applies the membership rules. It holds read-only configuration
// and is safe to reuse across runs.
type Classifier struct {
	homeInstitution string
	homeOrgs        []string
	roleMap         map[string]string
	degreeRoles     map[string]string
	hierarchy       map[string]int
	policy          Policy
	now             func() time.Time
	log             logger.Logger
}

// New creates a classifier with configuration options.
func New(opts ...Option) *Classifier {
	c := &Classifier{
		roleMap:     DefaultRoleMap(),
		degreeRoles: DefaultDegreeRoles(),
		hierarchy:   map[string]int{},
		policy:      PolicyExclude,
		now:         time.Now,
		log:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify derives a Classification for every member with at least one
// education or experience record. It never fails; problems end up in
// Result.Issues and in the log.
func (c *Classifier) Classify(ctx context.Context, in Input) Result {
	res := Result{ByID: make(map[model.MemberID]Classification)}
	now := c.now()

	edu, exp, projects := c.dropDangling(ctx, in, &res)
	c.checkDates(ctx, in.order(), edu, exp, &res)

	for _, id := range in.order() {
		info := in.Members[id]
		e, hasEdu := mostRecent(edu[id], eduDates)
		x, hasExp := c.mostRecentExperience(exp[id])

		if !hasEdu && !hasExp {
			res.Undecided = append(res.Undecided, id)
			issue := &NoStatusDecidable{MemberID: id, Policy: c.policy}
			res.Issues = append(res.Issues, issue)
			c.log.Warn(ctx, "member status undecidable", logger.String("member", string(id)), logger.String("policy", string(c.policy)))
			if c.policy == PolicyAlumni {
				res.ByID[id] = Classification{ID: id}
				res.Alumni = append(res.Alumni, types.AlumniMember{ID: id, FullName: info.FullName()})
			}
			continue
		}

		var ep *model.EducationRecord
		if hasEdu {
			ep = &e
		}
		var xp *model.ExperienceRecord
		if hasExp {
			xp = &x
		}
		current, role := c.resolve(ep, xp, now)
		role = c.remap(role)
		cl := Classification{ID: id, Current: current, Role: role}

		if !current {
			res.ByID[id] = cl
			res.Alumni = append(res.Alumni, types.AlumniMember{ID: id, Role: role, FullName: info.FullName()})
			continue
		}
		if ps := projects[id]; len(ps) > 0 {
			cl.ProjectTitle = ps[0].Title
		}
		cl.Rank, cl.Ranked = c.rank(role)
		res.ByID[id] = cl
		res.Current = append(res.Current, types.CurrentMember{
			ID:           id,
			Role:         role,
			ProjectTitle: cl.ProjectTitle,
			Rank:         cl.Rank,
			Ranked:       cl.Ranked,
			Info:         info,
		})
	}

	c.sortCurrent(ctx, &res)
	c.log.Info(ctx, "classified members",
		logger.Int("current", len(res.Current)),
		logger.Int("alumni", len(res.Alumni)),
		logger.Int("undecided", len(res.Undecided)))
	return res
}

// resolve applies the status and role precedence to the most-recent records.
func (c *Classifier) resolve(e *model.EducationRecord, x *model.ExperienceRecord, now time.Time) (bool, string) {
	academic := ""
	if e != nil {
		academic = c.academicRole(*e)
	}
	fallback := academic
	if fallback == "" && x != nil {
		fallback = x.Role
	}

	switch {
	case e != nil && e.Institution == c.homeInstitution:
		if active(e.EndDate, now) {
			return x == nil || !x.EndDate.Valid, fallback
		}
		// ended studies followed by an active in-group position
		if x != nil && c.isHomeOrg(x.Group) && active(x.EndDate, now) {
			return true, x.Role
		}
		return false, fallback
	case x != nil && c.isHomeOrg(x.Group):
		if active(x.EndDate, now) {
			return true, x.Role
		}
		return false, fallback
	default:
		return false, fallback
	}
}

func (c *Classifier) academicRole(e model.EducationRecord) string {
	if e.Institution != c.homeInstitution {
		return ""
	}
	return c.degreeRoles[e.Degree]
}

func (c *Classifier) remap(role string) string {
	if r, ok := c.roleMap[role]; ok {
		return r
	}
	return role
}

func (c *Classifier) rank(role string) (int, bool) {
	if r, ok := c.hierarchy[role]; ok {
		return r, true
	}
	return UnrankedRank, false
}

// isHomeOrg reports whether group names one of the home organizations.
// Matching is by substring, so "TARDIS Collaboration" counts for "TARDIS".
func (c *Classifier) isHomeOrg(group string) bool {
	if group == "" {
		return false
	}
	for _, org := range c.homeOrgs {
		if strings.Contains(group, org) {
			return true
		}
	}
	return false
}

// mostRecentExperience prefers home-organization records when any exist.
func (c *Classifier) mostRecentExperience(recs []model.ExperienceRecord) (model.ExperienceRecord, bool) {
	home := make([]model.ExperienceRecord, 0, len(recs))
	for _, r := range recs {
		if c.isHomeOrg(r.Group) {
			home = append(home, r)
		}
	}
	if len(home) > 0 {
		return mostRecent(home, expDates)
	}
	return mostRecent(recs, expDates)
}

func (c *Classifier) sortCurrent(ctx context.Context, res *Result) {
	var missing []string
	for _, m := range res.Current {
		if !m.Ranked && !slices.Contains(missing, m.Role) {
			missing = append(missing, m.Role)
		}
	}
	if len(missing) > 0 {
		res.Issues = append(res.Issues, &UnrankedRoleWarning{Roles: missing})
		c.log.Warn(ctx, "roles not in hierarchy, sorted last", logger.Strings("roles", missing))
	}
	sort.SliceStable(res.Current, func(i, j int) bool {
		a, b := res.Current[i], res.Current[j]
		if a.Ranked != b.Ranked {
			return a.Ranked
		}
		return a.Rank < b.Rank
	})
}

// dropDangling removes detail records whose member was never loaded.
func (c *Classifier) dropDangling(ctx context.Context, in Input, res *Result) (
	map[model.MemberID][]model.EducationRecord,
	map[model.MemberID][]model.ExperienceRecord,
	map[model.MemberID][]model.ProjectRecord,
) {
	report := func(kind string, id model.MemberID, n int) {
		res.Issues = append(res.Issues, &MissingReferenceError{Kind: kind, MemberID: id})
		c.log.Warn(ctx, "dropping records for unknown member",
			logger.String("kind", kind), logger.String("member", string(id)), logger.Int("records", n))
	}
	return keepKnown(in.Members, in.Education, "education", report),
		keepKnown(in.Members, in.Experience, "experience", report),
		keepKnown(in.Members, in.Projects, "project", report)
}

func keepKnown[T any](
	members map[model.MemberID]model.MemberInfo,
	recs map[model.MemberID][]T,
	kind string,
	report func(string, model.MemberID, int),
) map[model.MemberID][]T {
	out := make(map[model.MemberID][]T, len(recs))
	ids := make([]model.MemberID, 0, len(recs))
	for id := range recs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		if _, ok := members[id]; !ok {
			report(kind, id, len(recs[id]))
			continue
		}
		out[id] = recs[id]
	}
	return out
}

// checkDates reports every date that was present but unreadable.
func (c *Classifier) checkDates(
	ctx context.Context,
	order []model.MemberID,
	edu map[model.MemberID][]model.EducationRecord,
	exp map[model.MemberID][]model.ExperienceRecord,
	res *Result,
) {
	report := func(id model.MemberID, field string, d model.Date) {
		if !d.Unparsed() {
			return
		}
		res.Issues = append(res.Issues, &AmbiguousDateError{MemberID: id, Field: field, Value: d.Raw})
		c.log.Warn(ctx, "unparseable date treated as unknown",
			logger.String("member", string(id)), logger.String("field", field), logger.String("value", d.Raw))
	}
	for _, id := range order {
		for _, r := range edu[id] {
			report(id, "education.start_date", r.StartDate)
			report(id, "education.end_date", r.EndDate)
		}
		for _, r := range exp[id] {
			report(id, "experience.start_date", r.StartDate)
			report(id, "experience.end_date", r.EndDate)
		}
	}
}

// order returns Order, or the sorted member ids when Order is empty.
func (in Input) order() []model.MemberID {
	if len(in.Order) > 0 {
		out := make([]model.MemberID, 0, len(in.Order))
		for _, id := range in.Order {
			if _, ok := in.Members[id]; ok {
				out = append(out, id)
			}
		}
		return out
	}
	ids := make([]model.MemberID, 0, len(in.Members))
	for id := range in.Members {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// active reports whether an end date is absent or not yet passed.
func active(end model.Date, now time.Time) bool {
	return !end.Valid || !end.Time.Before(now)
}

func eduDates(r model.EducationRecord) (model.Date, model.Date) { return r.StartDate, r.EndDate }
func expDates(r model.ExperienceRecord) (model.Date, model.Date) { return r.StartDate, r.EndDate }

// mostRecent picks the record with the latest start. On equal starts an
// open end wins, then the earliest end. Unknown starts sort last and
// remaining ties keep input order.
func mostRecent[T any](recs []T, dates func(T) (model.Date, model.Date)) (T, bool) {
	var zero T
	if len(recs) == 0 {
		return zero, false
	}
	sorted := slices.Clone(recs)
	slices.SortStableFunc(sorted, func(a, b T) int {
		as, ae := dates(a)
		bs, be := dates(b)
		if c := compareStartDesc(as, bs); c != 0 {
			return c
		}
		return compareEndAsc(ae, be)
	})
	return sorted[0], true
}

func compareStartDesc(a, b model.Date) int {
	switch {
	case a.Valid && !b.Valid:
		return -1
	case !a.Valid && b.Valid:
		return 1
	case !a.Valid:
		return 0
	}
	return b.Time.Compare(a.Time)
}

func compareEndAsc(a, b model.Date) int {
	switch {
	case !a.Valid && b.Valid:
		return -1
	case a.Valid && !b.Valid:
		return 1
	case !a.Valid:
		return 0
	}
	return a.Time.Compare(b.Time)
}
