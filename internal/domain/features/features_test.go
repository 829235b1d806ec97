package features_test

import (
	"errors"
	"math"
	"testing"

	"github.com/okian/playervalue/internal/domain/encoding"
	"github.com/okian/playervalue/internal/domain/features"
	"github.com/okian/playervalue/internal/domain/player"
	. "github.com/smartystreets/goconvey/convey"
)

func table() *encoding.Table {
	return encoding.New(map[string]float64{"Manchester City": 5, "Arsenal": 3.5})
}

func goalkeeper() *player.RawPlayerInput {
	return &player.RawPlayerInput{
		Position:                player.Goalkeeper,
		Age:                     30,
		Team:                    "Manchester City",
		Foot:                    player.Right,
		Wage:                    270_000,
		YearsLeft:               3,
		Height:                  181,
		Weight:                  70,
		Acceleration:            78,
		SprintSpeed:             76,
		Agility:                 82,
		Balance:                 80,
		Stamina:                 90,
		Strength:                74,
		InternationalReputation: 5,
		OnLoan:                  false,
		Skills:                  player.GoalkeeperSkills{Diving: 80, Handling: 78, Reflexes: 85},
	}
}

func TestBuild_Goalkeeper(t *testing.T) {
	Convey("Given the Manchester City goalkeeper", t, func() {
		v, err := features.Build(goalkeeper(), table())
		So(err, ShouldBeNil)

		Convey("Then every feature is present", func() {
			So(v, ShouldHaveLength, features.Count)
			So(features.Validate(v), ShouldBeNil)
		})

		Convey("Then the goalkeeper category is active", func() {
			So(v[features.IsGoalkeeper], ShouldEqual, 1)
			So(v[features.IsForward], ShouldEqual, 0)
			So(v[features.IsMidfielder], ShouldEqual, 0)
			So(v[features.IsDefender], ShouldEqual, 0)
		})

		Convey("Then only the goalkeeper score is populated", func() {
			So(v[features.GoalkeeperScore], ShouldEqual, 81)
			So(v[features.ForwardScore], ShouldEqual, 0)
			So(v[features.MidfielderScore], ShouldEqual, 0)
			So(v[features.DefenderScore], ShouldEqual, 0)
		})

		Convey("Then encoded and transformed attributes are set", func() {
			So(v[features.Wage], ShouldEqual, math.Log1p(270_000))
			So(v[features.TeamEncoded], ShouldEqual, 5)
			So(v[features.Foot], ShouldEqual, 1)
			So(v[features.OnLoan], ShouldEqual, 0)
		})

		Convey("Then scalar attributes pass through unchanged", func() {
			So(v[features.Age], ShouldEqual, 30)
			So(v[features.Height], ShouldEqual, 181)
			So(v[features.Weight], ShouldEqual, 70)
			So(v[features.Acceleration], ShouldEqual, 78)
			So(v[features.SprintSpeed], ShouldEqual, 76)
			So(v[features.Agility], ShouldEqual, 82)
			So(v[features.Balance], ShouldEqual, 80)
			So(v[features.Stamina], ShouldEqual, 90)
			So(v[features.Strength], ShouldEqual, 74)
			So(v[features.InternationalReputation], ShouldEqual, 5)
			So(v[features.YearsLeft], ShouldEqual, 3)
		})
	})
}

func TestBuild_Categories(t *testing.T) {
	Convey("Given a forward on loan with a left foot", t, func() {
		in := goalkeeper()
		in.Position = player.Forward
		in.Foot = player.Left
		in.OnLoan = true
		in.Skills = player.ForwardSkills{Crossing: 75, Finishing: 82, Dribbling: 88, BallControl: 85, Volleys: 78}

		v, err := features.Build(in, table())
		So(err, ShouldBeNil)

		Convey("Then the forward indicator is the only one set", func() {
			So(v[features.IsForward], ShouldEqual, 1)
			So(v[features.IsGoalkeeper]+v[features.IsMidfielder]+v[features.IsDefender], ShouldEqual, 0)
		})

		Convey("Then the forward score is the mean of the forward ratings", func() {
			So(v[features.ForwardScore], ShouldAlmostEqual, (75.0+82+88+85+78)/5, 1e-9)
			So(v[features.GoalkeeperScore]+v[features.MidfielderScore]+v[features.DefenderScore], ShouldEqual, 0)
		})

		Convey("Then the binary encodings flip", func() {
			So(v[features.Foot], ShouldEqual, 0)
			So(v[features.OnLoan], ShouldEqual, 1)
		})
	})

	Convey("Given each position without skills", t, func() {
		for _, p := range player.Positions {
			in := goalkeeper()
			in.Position = p
			in.Skills = nil

			v, err := features.Build(in, table())
			So(err, ShouldBeNil)
			So(features.Validate(v), ShouldBeNil)

			var indicators, scores float64
			for _, n := range []string{features.IsForward, features.IsMidfielder, features.IsDefender, features.IsGoalkeeper} {
				indicators += v[n]
			}
			for _, n := range []string{features.ForwardScore, features.MidfielderScore, features.DefenderScore, features.GoalkeeperScore} {
				scores += v[n]
			}
			So(indicators, ShouldEqual, 1)
			So(scores, ShouldEqual, 0)
		}
	})
}

func TestBuild_Errors(t *testing.T) {
	Convey("Given a player on a team absent from the table", t, func() {
		in := goalkeeper()
		in.Team = "Atlantis FC"

		_, err := features.Build(in, table())

		Convey("Then the unknown team error propagates", func() {
			So(errors.Is(err, encoding.ErrUnknownTeam), ShouldBeTrue)
		})
	})

	Convey("Given every team in the table", t, func() {
		tbl := table()
		for _, team := range tbl.Teams() {
			in := goalkeeper()
			in.Team = team
			_, err := features.Build(in, tbl)
			So(err, ShouldBeNil)
		}
	})

	Convey("Given skills for a different position", t, func() {
		in := goalkeeper()
		in.Skills = player.DefenderSkills{Aggression: 70}
		_, err := features.Build(in, table())
		So(errors.Is(err, features.ErrFeatureMismatch), ShouldBeTrue)
	})
}

func TestWageTransform(t *testing.T) {
	Convey("Given wages across the form range", t, func() {
		for _, w := range []float64{500, 1_250, 60_000, 270_000, 440_000} {
			in := goalkeeper()
			in.Wage = w
			v, err := features.Build(in, table())
			So(err, ShouldBeNil)

			So(math.Expm1(v[features.Wage]), ShouldAlmostEqual, w, w*1e-12)
			So(math.Exp(v[features.Wage])-1, ShouldAlmostEqual, w, 1e-6)
		}
	})

	Convey("Given the builder contract", t, func() {
		So(features.BuilderContract.WageTransform, ShouldEqual, "log1p")
		So(features.BuilderContract.TargetTransform, ShouldEqual, "log")
		So(features.BuilderContract.Equal(features.Contract{Version: "v1", WageTransform: "log1p", TargetTransform: "log"}), ShouldBeTrue)
		So(features.BuilderContract.Equal(features.Contract{Version: "v1", WageTransform: "log", TargetTransform: "log"}), ShouldBeFalse)
	})
}

func TestValidate(t *testing.T) {
	Convey("Given a complete vector", t, func() {
		v, err := features.Build(goalkeeper(), table())
		So(err, ShouldBeNil)

		Convey("When a name is removed", func() {
			delete(v, features.Wage)
			err := features.Validate(v)
			So(errors.Is(err, features.ErrFeatureMismatch), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "missing")
		})

		Convey("When an unexpected name is added", func() {
			v["Shoe size"] = 44
			err := features.Validate(v)
			So(errors.Is(err, features.ErrFeatureMismatch), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "Shoe size")
		})
	})
}
