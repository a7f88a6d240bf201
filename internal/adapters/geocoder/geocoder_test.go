package geocoder_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/okian/trainer/internal/adapters/geocoder"
	"github.com/okian/trainer/internal/adapters/lookup"
	. "github.com/smartystreets/goconvey/convey"
)

const berlin = "Berlin, Deutschland"

func TestGeocode(t *testing.T) {
	Convey("Given a Nominatim-like server", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			if q.Get("format") != "json" || q.Get("limit") != "1" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			switch q.Get("q") {
			case "Berlin":
				_, _ = w.Write([]byte(`[{"display_name":"` + berlin + `","lat":"52.5","lon":"13.4"}]`))
			case "Atlantis":
				_, _ = w.Write([]byte(`[]`))
			default:
				w.WriteHeader(http.StatusTooManyRequests)
			}
		}))
		defer srv.Close()
		c := geocoder.New(lookup.New(), srv.URL)

		Convey("When the place is found", func() {
			addr, err := c.Geocode(context.Background(), "Berlin")
			So(err, ShouldBeNil)
			So(addr, ShouldEqual, berlin)
		})

		Convey("When nothing matches", func() {
			addr, err := c.Geocode(context.Background(), "Atlantis")
			So(err, ShouldBeNil)
			So(addr, ShouldBeEmpty)
		})

		Convey("When the server throttles", func() {
			_, err := c.Geocode(context.Background(), "Paris")
			So(errors.Is(err, lookup.ErrUpstream), ShouldBeTrue)
		})
	})
}
