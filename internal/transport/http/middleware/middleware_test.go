package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/vedran77/campusconnect/pkg/logger"
	"github.com/vedran77/campusconnect/pkg/metrics"
)

const secret = "test-secret"

func signToken(sub string, method jwt.SigningMethod, key any, ttl time.Duration) string {
	now := time.Now()
	token := jwt.NewWithClaims(method, jwt.RegisteredClaims{
		Subject:   sub,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})
	s, err := token.SignedString(key)
	if err != nil {
		panic(err)
	}
	return s
}

func TestAuth(t *testing.T) {
	Convey("Given a protected handler", t, func() {
		var seen uuid.UUID
		h := Auth(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = GetAccountID(r.Context())
		}))
		id := uuid.New()

		call := func(header string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			return rec
		}

		Convey("A valid bearer token reaches the handler", func() {
			rec := call("Bearer " + signToken(id.String(), jwt.SigningMethodHS256, []byte(secret), time.Hour))
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(seen, ShouldEqual, id)
		})

		Convey("Missing tokens are rejected", func() {
			rec := call("")
			So(rec.Code, ShouldEqual, http.StatusUnauthorized)
			So(rec.Body.String(), ShouldContainSubstring, "UNAUTHORIZED")
		})

		Convey("Expired tokens are rejected", func() {
			rec := call("Bearer " + signToken(id.String(), jwt.SigningMethodHS256, []byte(secret), -time.Minute))
			So(rec.Code, ShouldEqual, http.StatusUnauthorized)
		})

		Convey("Tokens signed with another key or algorithm are rejected", func() {
			rec := call("Bearer " + signToken(id.String(), jwt.SigningMethodHS256, []byte("other"), time.Hour))
			So(rec.Code, ShouldEqual, http.StatusUnauthorized)

			rec = call("Bearer " + signToken(id.String(), jwt.SigningMethodHS512, []byte(secret), time.Hour))
			So(rec.Code, ShouldEqual, http.StatusUnauthorized)
		})

		Convey("A subject that is not an account id is rejected", func() {
			rec := call("Bearer " + signToken("admin", jwt.SigningMethodHS256, []byte(secret), time.Hour))
			So(rec.Code, ShouldEqual, http.StatusUnauthorized)
		})
	})
}

func TestRateLimit(t *testing.T) {
	Convey("Given a limit of two messages per window", t, func() {
		m := metrics.NewManager()
		h := RateLimit(NewMemoryLimiter(), m, "message", 2, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
		}))

		send := func(id uuid.UUID) int {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			req = req.WithContext(WithAccountID(req.Context(), id))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			return rec.Code
		}

		alice, bob := uuid.New(), uuid.New()

		Convey("The third request in the window is refused", func() {
			So(send(alice), ShouldEqual, http.StatusCreated)
			So(send(alice), ShouldEqual, http.StatusCreated)
			So(send(alice), ShouldEqual, http.StatusTooManyRequests)

			count, err := testutil.GatherAndCount(m.Registry(), "campusconnect_rate_limited_total")
			So(err, ShouldBeNil)
			So(count, ShouldEqual, 1)
		})

		Convey("Accounts are limited independently", func() {
			send(alice)
			send(alice)
			So(send(bob), ShouldEqual, http.StatusCreated)
		})
	})

	Convey("A Redis limiter without a client allows everything", t, func() {
		l := NewRedisLimiter(nil, logger.Nop())
		So(l.Allow("k", 1, time.Second), ShouldBeTrue)
		So(l.Allow("k", 1, time.Second), ShouldBeTrue)
	})
}

func TestCORS(t *testing.T) {
	Convey("Preflight requests are answered without reaching the handler", t, func() {
		called := false
		h := CORS("https://campus.test")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/v1/listings", nil))

		So(called, ShouldBeFalse)
		So(rec.Code, ShouldEqual, http.StatusNoContent)
		So(rec.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "https://campus.test")
	})
}

func TestObserve(t *testing.T) {
	Convey("Requests are counted under their mux pattern", t, func() {
		m := metrics.NewManager()
		mux := http.NewServeMux()
		mux.HandleFunc("GET /api/v1/listings/{id}", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
		h := Observe(m, logger.Nop())(mux)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/listings/123", nil))
		So(rec.Code, ShouldEqual, http.StatusNotFound)

		expected := `
# HELP campusconnect_http_requests_total HTTP requests by route, method and status code.
# TYPE campusconnect_http_requests_total counter
campusconnect_http_requests_total{method="GET",route="GET /api/v1/listings/{id}",status_code="404"} 1
`
		err := testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "campusconnect_http_requests_total")
		So(err, ShouldBeNil)
	})
}
