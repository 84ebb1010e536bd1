package status_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/okian/labsite/internal/domain/model"
	"github.com/okian/labsite/internal/domain/status"
	"github.com/okian/labsite/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

const homeU = "Home U"

var fixedNow = time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

func newClassifier(opts ...status.Option) *status.Classifier {
	base := []status.Option{
		status.WithHomeInstitution(homeU),
		status.WithHomeOrganizations("Home U", "TARDIS"),
		status.WithNow(func() time.Time { return fixedNow }),
		status.WithHierarchy(map[string]int{
			"Professor":               1,
			"Postdoctoral Researcher": 2,
			"Graduate Student":        3,
			"Undergraduate Student":   4,
		}),
	}
	return status.New(append(base, opts...)...)
}

func date(s string) model.Date { return model.ParseDate(s) }

// builder assembles an Input in load order.
type builder struct{ in status.Input }

func newBuilder() *builder {
	return &builder{in: status.Input{
		Members:    map[model.MemberID]model.MemberInfo{},
		Education:  map[model.MemberID][]model.EducationRecord{},
		Experience: map[model.MemberID][]model.ExperienceRecord{},
		Projects:   map[model.MemberID][]model.ProjectRecord{},
	}}
}

func (b *builder) member(id, first, last string) *builder {
	mid := model.MemberID(id)
	b.in.Members[mid] = model.MemberInfo{ID: mid, FirstName: first, LastName: last, Social: model.SocialLinks{"github": "https://github.com/" + id}}
	b.in.Order = append(b.in.Order, mid)
	return b
}

func (b *builder) edu(id, inst, degree, start, end string) *builder {
	mid := model.MemberID(id)
	b.in.Education[mid] = append(b.in.Education[mid], model.EducationRecord{
		MemberID: mid, Institution: inst, Degree: degree, StartDate: date(start), EndDate: date(end),
	})
	return b
}

func (b *builder) exp(id, group, role, start, end string) *builder {
	mid := model.MemberID(id)
	b.in.Experience[mid] = append(b.in.Experience[mid], model.ExperienceRecord{
		MemberID: mid, Group: group, Role: role, StartDate: date(start), EndDate: date(end),
	})
	return b
}

func (b *builder) project(id, title string) *builder {
	mid := model.MemberID(id)
	b.in.Projects[mid] = append(b.in.Projects[mid], model.ProjectRecord{MemberID: mid, Title: title})
	return b
}

func issuesMatching(res status.Result, target error) int {
	n := 0
	for _, err := range res.Issues {
		if errors.Is(err, target) {
			n++
		}
	}
	return n
}

func TestScenarios(t *testing.T) {
	Convey("Given the membership rules", t, func() {
		ctx := context.Background()

		Convey("When a PhD student at the home institution has open-ended studies and no experience", func() {
			in := newBuilder().member("a", "Ada", "Lovelace").
				edu("a", homeU, "PhD", "2019-01-01", "").in
			res := newClassifier().Classify(ctx, in)

			Convey("Then the member is a current graduate student", func() {
				got := res.ByID["a"]
				So(got.Current, ShouldBeTrue)
				So(got.Role, ShouldEqual, "Graduate Student")
				So(got.Rank, ShouldEqual, 3)
			})
		})

		Convey("When studies at the home institution ended and an in-group position is open", func() {
			in := newBuilder().member("b", "Bo", "Bell").
				edu("b", homeU, "PhD", "2015-01-01", "2019-06-01").
				exp("b", homeU, "Postdoc", "2019-07-01", "").in
			res := newClassifier().Classify(ctx, in)

			Convey("Then the active position keeps the member current with its role", func() {
				got := res.ByID["b"]
				So(got.Current, ShouldBeTrue)
				So(got.Role, ShouldEqual, "Postdoc")
			})
		})

		Convey("When studies ended and the in-group position ended too", func() {
			in := newBuilder().member("b", "Bo", "Bell").
				edu("b", homeU, "PhD", "2015-01-01", "2019-06-01").
				exp("b", homeU, "Postdoc", "2019-07-01", "2022-01-01").in
			res := newClassifier().Classify(ctx, in)

			Convey("Then the member is alumni with the academic role", func() {
				So(res.ByID["b"].Current, ShouldBeFalse)
				So(res.Alumni, ShouldResemble, []types.AlumniMember{{ID: "b", Role: "Graduate Student", FullName: "Bo Bell"}})
			})
		})
	})
}

func TestMostRecentSelection(t *testing.T) {
	Convey("Given several education records for one member", t, func() {
		ctx := context.Background()

		Convey("When an open-ended 2022 record competes with a closed 2020 record", func() {
			in := newBuilder().member("m", "Mo", "Ray").
				edu("m", homeU, "Bachelors", "2020-01-01", "2021-01-01").
				edu("m", homeU, "Masters", "2022-01-01", "").in
			res := newClassifier().Classify(ctx, in)

			Convey("Then the newer open-ended record decides", func() {
				So(res.ByID["m"].Current, ShouldBeTrue)
				So(res.ByID["m"].Role, ShouldEqual, "Graduate Student")
			})
		})

		Convey("When two records share a start date", func() {
			in := newBuilder().member("m", "Mo", "Ray").
				edu("m", homeU, "Bachelors", "2020-01-01", "2021-01-01").
				edu("m", homeU, "Masters", "2020-01-01", "").in
			res := newClassifier().Classify(ctx, in)

			Convey("Then the open-ended one wins the tie", func() {
				So(res.ByID["m"].Role, ShouldEqual, "Graduate Student")
			})
		})

		Convey("When two records share a start date and both have ended or will end", func() {
			in := newBuilder().member("m", "Mo", "Ray").
				edu("m", homeU, "Bachelors", "2020-01-01", "2030-01-01").
				edu("m", homeU, "Masters", "2020-01-01", "2025-01-01").in
			res := newClassifier().Classify(ctx, in)

			Convey("Then the earlier end date wins the tie", func() {
				So(res.ByID["m"].Current, ShouldBeTrue)
				So(res.ByID["m"].Role, ShouldEqual, "Graduate Student")
			})
		})

		Convey("When a record has no start date", func() {
			in := newBuilder().member("m", "Mo", "Ray").
				edu("m", homeU, "Masters", "", "").
				edu("m", "Elsewhere", "Bachelors", "2010-01-01", "2014-01-01").in
			res := newClassifier().Classify(ctx, in)

			Convey("Then the dated record is preferred", func() {
				So(res.ByID["m"].Current, ShouldBeFalse)
				So(res.ByID["m"].Role, ShouldEqual, "")
			})
		})

		Convey("When experience mixes in-group and external positions", func() {
			in := newBuilder().member("x", "Xi", "Yu").
				exp("x", "TARDIS Collaboration", "Software Engineer", "2020-01-01", "").
				exp("x", "Big Corp", "Consultant", "2023-01-01", "").in
			res := newClassifier().Classify(ctx, in)

			Convey("Then the in-group position is used even though it is older", func() {
				So(res.ByID["x"].Current, ShouldBeTrue)
				So(res.ByID["x"].Role, ShouldEqual, "Software Engineer")
			})
		})

		Convey("When only external positions exist", func() {
			in := newBuilder().member("x", "Xi", "Yu").
				exp("x", "Big Corp", "Consultant", "2023-01-01", "").in
			res := newClassifier().Classify(ctx, in)

			Convey("Then the member is alumni with the external role", func() {
				So(res.ByID["x"].Current, ShouldBeFalse)
				So(res.ByID["x"].Role, ShouldEqual, "Consultant")
			})
		})
	})
}

func TestStatusProperties(t *testing.T) {
	Convey("Given a mixed group", t, func() {
		ctx := context.Background()

		Convey("When experience with a past end date follows active studies", func() {
			in := newBuilder().member("p", "Pat", "Lee").
				edu("p", homeU, "PhD", "2021-01-01", "").
				exp("p", "Big Corp", "Intern", "2021-06-01", "2021-09-01").in
			res := newClassifier().Classify(ctx, in)

			Convey("Then the member is not current", func() {
				So(res.ByID["p"].Current, ShouldBeFalse)
				So(res.ByID["p"].Role, ShouldEqual, "Graduate Student")
			})
		})

		Convey("When active studies meet an in-group position with a future end date", func() {
			in := newBuilder().member("r", "Ria", "Sen").
				edu("r", homeU, "PhD", "2021-01-01", "").
				exp("r", "TARDIS", "Research Assistant", "2022-01-01", "2026-01-01").in
			res := newClassifier().Classify(ctx, in)

			Convey("Then any experience end date makes the student not current", func() {
				So(res.ByID["r"].Current, ShouldBeFalse)
				So(res.ByID["r"].Role, ShouldEqual, "Graduate Student")
				So(res.Alumni, ShouldResemble, []types.AlumniMember{{ID: "r", Role: "Graduate Student", FullName: "Ria Sen"}})
			})
		})

		Convey("When the resolved role has a display remap", func() {
			in := newBuilder().member("w", "Wolf", "K").
				exp("w", "TARDIS", "Assistant Professor", "2018-01-01", "").in
			res := newClassifier().Classify(ctx, in)

			Convey("Then the remapped role is stored", func() {
				So(res.ByID["w"].Role, ShouldEqual, "Professor")
				So(res.Current[0].Rank, ShouldEqual, 1)
			})
		})

		Convey("When members hold roles missing from the hierarchy", func() {
			in := newBuilder().
				member("u1", "U", "One").exp("u1", "TARDIS", "Research Software Engineer", "2020-01-01", "").
				member("g", "G", "Grad").edu("g", homeU, "PhD", "2020-01-01", "").
				member("u2", "U", "Two").exp("u2", "TARDIS", "Visiting Student", "2021-01-01", "").
				member("prof", "P", "Prof").exp("prof", "TARDIS", "Professor", "2010-01-01", "").in
			res := newClassifier().Classify(ctx, in)

			Convey("Then they keep their relative order after every ranked member", func() {
				ids := make([]model.MemberID, 0, len(res.Current))
				for _, m := range res.Current {
					ids = append(ids, m.ID)
				}
				So(ids, ShouldResemble, []model.MemberID{"prof", "g", "u1", "u2"})
				So(res.Current[2].Ranked, ShouldBeFalse)
				So(res.Current[2].Rank, ShouldEqual, status.UnrankedRank)
			})

			Convey("And a single warning lists the missing roles", func() {
				So(issuesMatching(res, status.ErrUnrankedRole), ShouldEqual, 1)
				var w *status.UnrankedRoleWarning
				for _, err := range res.Issues {
					if errors.As(err, &w) {
						break
					}
				}
				So(w.Roles, ShouldResemble, []string{"Research Software Engineer", "Visiting Student"})
			})
		})

		Convey("When current members have projects", func() {
			in := newBuilder().member("g", "G", "Grad").
				edu("g", homeU, "PhD", "2020-01-01", "").
				project("g", "Supernova emulators").
				project("g", "Older project").in
			res := newClassifier().Classify(ctx, in)

			Convey("Then the first loaded project is attached", func() {
				So(res.Current[0].ProjectTitle, ShouldEqual, "Supernova emulators")
				So(res.Current[0].Info.FullName(), ShouldEqual, "G Grad")
			})
		})

		Convey("When alumni are produced", func() {
			in := newBuilder().
				member("z", "Zed", "Last").exp("z", "TARDIS", "Postdoc", "2015-01-01", "2018-01-01").project("z", "Hidden").
				member("y", "Yan", "Prior").edu("y", homeU, "Bachelors", "2012-01-01", "2016-05-01").in
			res := newClassifier().Classify(ctx, in)

			Convey("Then only id, role and full name are kept, in load order", func() {
				want := []types.AlumniMember{
					{ID: "z", Role: "Postdoc", FullName: "Zed Last"},
					{ID: "y", Role: "Undergraduate Student", FullName: "Yan Prior"},
				}
				So(cmp.Diff(want, res.Alumni), ShouldBeEmpty)
				So(res.Current, ShouldBeEmpty)
			})
		})
	})
}

func TestTotality(t *testing.T) {
	Convey("Given members with and without records", t, func() {
		ctx := context.Background()
		in := newBuilder().
			member("a", "A", "A").edu("a", homeU, "PhD", "2019-01-01", "").
			member("b", "B", "B").exp("b", "Elsewhere", "Engineer", "2019-01-01", "").
			member("c", "C", "C").
			member("d", "D", "D").exp("d", "TARDIS", "Postdoc", "2022-01-01", "").in

		Convey("When classifying with the default policy", func() {
			res := newClassifier().Classify(ctx, in)

			Convey("Then every member with records is in exactly one set", func() {
				seen := map[model.MemberID]int{}
				for _, m := range res.Current {
					seen[m.ID]++
				}
				for _, m := range res.Alumni {
					seen[m.ID]++
				}
				So(cmp.Diff(map[model.MemberID]int{"a": 1, "b": 1, "d": 1}, seen), ShouldBeEmpty)
			})

			Convey("And the member without records is excluded but reported", func() {
				So(res.Undecided, ShouldResemble, []model.MemberID{"c"})
				So(issuesMatching(res, status.ErrNoStatus), ShouldEqual, 1)
				_, ok := res.ByID["c"]
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When classifying with the alumni policy", func() {
			res := newClassifier(status.WithPolicy(status.PolicyAlumni)).Classify(ctx, in)

			Convey("Then the member without records becomes alumni without a role", func() {
				So(res.Alumni, ShouldContain, types.AlumniMember{ID: "c", FullName: "C C"})
				So(res.IsCurrent("c"), ShouldBeFalse)
				So(res.Undecided, ShouldResemble, []model.MemberID{"c"})
			})
		})

		Convey("When an invalid policy is given", func() {
			res := newClassifier(status.WithPolicy("drop")).Classify(ctx, in)

			Convey("Then the default exclude policy applies", func() {
				So(len(res.Alumni), ShouldEqual, 1)
			})
		})
	})
}

func TestIssues(t *testing.T) {
	Convey("Given records with problems", t, func() {
		ctx := context.Background()

		Convey("When a detail record references an unknown member", func() {
			in := newBuilder().member("a", "A", "A").edu("a", homeU, "PhD", "2019-01-01", "").in
			in.Experience["ghost"] = []model.ExperienceRecord{{MemberID: "ghost", Group: "TARDIS", Role: "Postdoc"}}
			in.Projects["ghost"] = []model.ProjectRecord{{MemberID: "ghost", Title: "Nothing"}}
			res := newClassifier().Classify(ctx, in)

			Convey("Then the records are dropped and reported", func() {
				So(issuesMatching(res, status.ErrMissingReference), ShouldEqual, 2)
				_, ok := res.ByID["ghost"]
				So(ok, ShouldBeFalse)
				So(res.IsCurrent("a"), ShouldBeTrue)
			})
		})

		Convey("When a date cannot be parsed", func() {
			in := newBuilder().member("a", "A", "A").
				edu("a", homeU, "PhD", "2019-01-01", "sometime").in
			res := newClassifier().Classify(ctx, in)

			Convey("Then it counts as absent and an issue is recorded", func() {
				So(res.IsCurrent("a"), ShouldBeTrue)
				var ad *status.AmbiguousDateError
				So(errors.As(res.Issues[0], &ad), ShouldBeTrue)
				So(ad.Field, ShouldEqual, "education.end_date")
				So(ad.Value, ShouldEqual, "sometime")
			})
		})

		Convey("When Order is empty", func() {
			in := newBuilder().
				member("b", "B", "B").exp("b", "TARDIS", "Postdoc", "2020-01-01", "2021-01-01").
				member("a", "A", "A").exp("a", "TARDIS", "Postdoc", "2020-01-01", "2021-01-01").in
			in.Order = nil
			res := newClassifier().Classify(ctx, in)

			Convey("Then members are visited in id order", func() {
				So(res.Alumni[0].ID, ShouldEqual, model.MemberID("a"))
			})
		})
	})
}

func TestConfiguration(t *testing.T) {
	Convey("Given custom configuration", t, func() {
		ctx := context.Background()
		in := newBuilder().member("s", "S", "S").
			edu("s", "Michigan State University", "PhD", "2022-01-01", "").in

		Convey("When the home institution differs", func() {
			res := newClassifier().Classify(ctx, in)
			So(res.IsCurrent("s"), ShouldBeFalse)
		})

		Convey("When the home institution and degree roles are overridden", func() {
			res := newClassifier(
				status.WithHomeInstitution("Michigan State University"),
				status.WithDegreeRoles(map[string]string{"PhD": "Doctoral Candidate"}),
				status.WithRoleMap(nil),
			).Classify(ctx, in)

			Convey("Then they drive the outcome", func() {
				want := status.Classification{ID: "s", Current: true, Role: "Doctoral Candidate", Rank: status.UnrankedRank}
				So(cmp.Diff(want, res.ByID["s"], cmpopts.EquateEmpty()), ShouldBeEmpty)
			})
		})

		Convey("When a clock is injected", func() {
			in := newBuilder().member("t", "T", "T").
				exp("t", "TARDIS", "Postdoc", "2020-01-01", "2024-06-01").in

			before := newClassifier().Classify(ctx, in)
			after := newClassifier(status.WithNow(func() time.Time {
				return time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
			})).Classify(ctx, in)

			Convey("Then future end dates count as active until they pass", func() {
				So(before.IsCurrent("t"), ShouldBeTrue)
				So(after.IsCurrent("t"), ShouldBeFalse)
			})
		})
	})
}
