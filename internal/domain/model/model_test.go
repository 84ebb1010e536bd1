package model_test

import (
	"encoding/json"
	"testing"
	"time"

	model "github.com/okian/labsite/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestParseDate(t *testing.T) {
	convey.Convey("Given record date strings", t, func() {
		convey.Convey("When the value is an ISO date", func() {
			d := model.ParseDate("2019-07-01")

			convey.Convey("Then it should be valid at midnight UTC", func() {
				convey.So(d.Valid, convey.ShouldBeTrue)
				convey.So(d.Time, convey.ShouldEqual, time.Date(2019, time.July, 1, 0, 0, 0, 0, time.UTC))
				convey.So(d.String(), convey.ShouldEqual, "2019-07-01")
			})
		})

		convey.Convey("When the value is RFC3339", func() {
			d := model.ParseDate("2021-03-04T10:00:00Z")

			convey.Convey("Then it should be valid", func() {
				convey.So(d.Valid, convey.ShouldBeTrue)
				convey.So(d.String(), convey.ShouldEqual, "2021-03-04")
			})
		})

		convey.Convey("When the value is empty", func() {
			d := model.ParseDate("  ")

			convey.Convey("Then it should be unknown but not unparsed", func() {
				convey.So(d.Valid, convey.ShouldBeFalse)
				convey.So(d.Unparsed(), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When the value cannot be parsed", func() {
			d := model.ParseDate("spring 2020")

			convey.Convey("Then it should be unknown and keep the raw text", func() {
				convey.So(d.Valid, convey.ShouldBeFalse)
				convey.So(d.Unparsed(), convey.ShouldBeTrue)
				convey.So(d.String(), convey.ShouldEqual, "spring 2020")
			})
		})

		convey.Convey("When comparing with a point in time", func() {
			now := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

			convey.So(model.NewDate(2023, time.June, 1).Before(now), convey.ShouldBeTrue)
			convey.So(model.NewDate(2025, time.June, 1).Before(now), convey.ShouldBeFalse)
			convey.So(model.Date{}.Before(now), convey.ShouldBeFalse)
		})
	})
}

func TestDateJSON(t *testing.T) {
	convey.Convey("Given an education record in JSON", t, func() {
		raw := `{"institution":"Home U","degree":"PhD","start_date":"2015-01-01","end_date":null}`

		convey.Convey("When it is decoded", func() {
			var rec model.EducationRecord
			err := json.Unmarshal([]byte(raw), &rec)

			convey.Convey("Then open-ended dates should be unknown", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(rec.StartDate.Valid, convey.ShouldBeTrue)
				convey.So(rec.EndDate.Valid, convey.ShouldBeFalse)
				convey.So(rec.EndDate.Unparsed(), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When a date is not a string", func() {
			var rec model.EducationRecord
			err := json.Unmarshal([]byte(`{"start_date":2015}`), &rec)

			convey.Convey("Then decoding should still succeed with an unparsed date", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(rec.StartDate.Unparsed(), convey.ShouldBeTrue)
				convey.So(rec.StartDate.Raw, convey.ShouldEqual, "2015")
			})
		})

		convey.Convey("When a valid date is encoded", func() {
			b, err := json.Marshal(model.NewDate(2020, time.February, 3))

			convey.So(err, convey.ShouldBeNil)
			convey.So(string(b), convey.ShouldEqual, `"2020-02-03"`)
		})
	})
}

func TestMemberFullName(t *testing.T) {
	convey.Convey("Given member profiles", t, func() {
		convey.Convey("When a nick name is present", func() {
			m := model.MemberInfo{FirstName: "Wolfgang", NickName: "Wolf", LastName: "Kerzendorf"}
			convey.So(m.FullName(), convey.ShouldEqual, "Wolf Kerzendorf")
		})

		convey.Convey("When there is no nick name", func() {
			m := model.MemberInfo{FirstName: "Jane", LastName: "Doe"}
			convey.So(m.FullName(), convey.ShouldEqual, "Jane Doe")
		})

		convey.Convey("When only a first name is present", func() {
			m := model.MemberInfo{FirstName: "Jane"}
			convey.So(m.FullName(), convey.ShouldEqual, "Jane")
		})
	})
}

func TestArticleContent(t *testing.T) {
	convey.Convey("Given an article body", t, func() {
		raw := `{"para2":"second","img1":"media/images/a.png","para1":"first","count":3}`

		convey.Convey("When it is decoded", func() {
			var c model.Content
			err := json.Unmarshal([]byte(raw), &c)

			convey.Convey("Then source key order should be kept", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(c), convey.ShouldEqual, 4)
				convey.So(c[0], convey.ShouldResemble, model.Block{Key: "para2", Value: "second"})
				convey.So(c[1].IsImage(), convey.ShouldBeTrue)
				convey.So(c[2].IsParagraph(), convey.ShouldBeTrue)
				convey.So(c[3].Value, convey.ShouldEqual, "3")
			})

			convey.Convey("And encoded again", func() {
				b, err := json.Marshal(c[:3])

				convey.So(err, convey.ShouldBeNil)
				convey.So(string(b), convey.ShouldEqual, `{"para2":"second","img1":"media/images/a.png","para1":"first"}`)
			})
		})

		convey.Convey("When the body is not an object", func() {
			var c model.Content
			err := json.Unmarshal([]byte(`["para1"]`), &c)

			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("When checking tags and platforms", func() {
			a := model.Article{Tags: []string{"Paper", "News"}, Platforms: []string{"kg", "twitter"}}

			convey.So(a.HasTag("news"), convey.ShouldBeTrue)
			convey.So(a.HasTag("talk"), convey.ShouldBeFalse)
			convey.So(a.PublishedTo("kg"), convey.ShouldBeTrue)
			convey.So(a.PublishedTo("KG"), convey.ShouldBeFalse)
		})
	})
}
