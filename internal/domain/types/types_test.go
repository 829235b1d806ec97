package types_test

import (
	"encoding/json"
	"testing"

	types "github.com/okian/playervalue/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestBatchItem(t *testing.T) {
	Convey("Given a failed batch item", t, func() {
		item := types.BatchItem{Index: 2, Error: &types.Problem{Code: "unknown_team", Message: "nope"}}

		Convey("When encoded to JSON", func() {
			b, err := json.Marshal(item)
			So(err, ShouldBeNil)

			Convey("Then the estimate is omitted", func() {
				So(string(b), ShouldNotContainSubstring, "estimate")
				So(string(b), ShouldContainSubstring, `"code":"unknown_team"`)
			})
		})
	})
}
