package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/vedran77/campusconnect/internal/domain"
	"github.com/vedran77/campusconnect/internal/repository/memory"
	"github.com/vedran77/campusconnect/internal/service"
	"github.com/vedran77/campusconnect/internal/transport/http/middleware"
	"github.com/vedran77/campusconnect/pkg/logger"
	"github.com/vedran77/campusconnect/pkg/metrics"
)

type testEnv struct {
	accounts *memory.AccountRepo

	auth        *AuthHandler
	account     *AccountHandler
	listing     *ListingHandler
	application *ApplicationHandler
	thread      *ThreadHandler
	dashboard   *DashboardHandler
}

func newTestEnv() *testEnv {
	log := logger.Nop()
	m := metrics.NewManager()

	accounts := memory.NewAccountRepo()
	listings := memory.NewListingRepo()
	applications := memory.NewApplicationRepo()
	messages := memory.NewMessageRepo()
	objects := memory.NewObjectRepo()

	return &testEnv{
		accounts:    accounts,
		auth:        NewAuthHandler(service.NewAuthService(accounts, "test-secret", time.Hour), log),
		account:     NewAccountHandler(service.NewAccountService(accounts, objects), log),
		listing:     NewListingHandler(service.NewListingService(listings, accounts, applications, m), log),
		application: NewApplicationHandler(service.NewApplicationService(applications, listings, accounts, m), log),
		thread:      NewThreadHandler(service.NewThreadService(messages, accounts, m), log),
		dashboard:   NewDashboardHandler(service.NewDashboardService(accounts, listings, applications), log),
	}
}

func (e *testEnv) seed(name string, role domain.Role, skills ...string) uuid.UUID {
	a := &domain.Account{
		ID:        uuid.New(),
		Name:      name,
		Email:     name + "@campus.test",
		Role:      role,
		Skills:    skills,
		CreatedAt: time.Now(),
	}
	if err := e.accounts.Create(context.Background(), a); err != nil {
		panic(err)
	}
	return a.ID
}

// call invokes h as the given account with optional path values
// given as name, value pairs.
func call(h http.HandlerFunc, as uuid.UUID, method, target, body string, pathValues ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if as != uuid.Nil {
		req = req.WithContext(middleware.WithAccountID(req.Context(), as))
	}
	for i := 0; i+1 < len(pathValues); i += 2 {
		req.SetPathValue(pathValues[i], pathValues[i+1])
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

type errorBody struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

func decodeError(rec *httptest.ResponseRecorder) errorBody {
	var body errorBody
	json.Unmarshal(rec.Body.Bytes(), &body)
	return body
}

func TestRegisterHandler(t *testing.T) {
	Convey("Given the auth handler", t, func() {
		env := newTestEnv()

		Convey("A valid registration returns 201 with a token", func() {
			rec := call(env.auth.Register, uuid.Nil, http.MethodPost, "/api/v1/auth/register",
				`{"name":"Cam","email":"cam@campus.test","password":"secret1","confirm_password":"secret1","role":"candidate"}`)
			So(rec.Code, ShouldEqual, http.StatusCreated)

			var resp service.AuthResponse
			So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)
			So(resp.AccessToken, ShouldNotBeEmpty)
			So(rec.Body.String(), ShouldNotContainSubstring, "password")

			Convey("Registering the same email again conflicts", func() {
				rec := call(env.auth.Register, uuid.Nil, http.MethodPost, "/api/v1/auth/register",
					`{"name":"Cam","email":"cam@campus.test","password":"secret1","confirm_password":"secret1","role":"poster"}`)
				So(rec.Code, ShouldEqual, http.StatusConflict)
				So(decodeError(rec).Error.Code, ShouldEqual, "EMAIL_TAKEN")
			})
		})

		Convey("Validation failures list the bad fields", func() {
			rec := call(env.auth.Register, uuid.Nil, http.MethodPost, "/api/v1/auth/register",
				`{"name":"","email":"nope","password":"123","confirm_password":"123","role":"candidate"}`)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)

			body := decodeError(rec)
			So(body.Error.Code, ShouldEqual, "VALIDATION_ERROR")
			So(body.Error.Fields, ShouldContainKey, "name")
			So(body.Error.Fields, ShouldContainKey, "email")
			So(body.Error.Fields, ShouldContainKey, "password")
		})

		Convey("Malformed JSON is rejected", func() {
			rec := call(env.auth.Login, uuid.Nil, http.MethodPost, "/api/v1/auth/login", `{`)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(rec).Error.Code, ShouldEqual, "INVALID_JSON")
		})
	})
}

func TestListingAndApplicationHandlers(t *testing.T) {
	Convey("Given a poster, two candidates and another poster", t, func() {
		env := newTestEnv()
		poster := env.seed("pat", domain.RolePoster)
		rival := env.seed("rita", domain.RolePoster)
		cam := env.seed("cam", domain.RoleCandidate, "Python", "React")
		dee := env.seed("dee", domain.RoleCandidate, "Go")

		listingBody := `{"title":"Web developer","description":"Build the campus site","category":"job","tags":["Python","React","SQL"]}`

		Convey("Candidates may not post listings", func() {
			rec := call(env.listing.Create, cam, http.MethodPost, "/api/v1/listings", listingBody)
			So(rec.Code, ShouldEqual, http.StatusForbidden)
			So(decodeError(rec).Error.Code, ShouldEqual, "ROLE_REQUIRED")
		})

		Convey("Listings that break the schema are rejected per field", func() {
			rec := call(env.listing.Create, poster, http.MethodPost, "/api/v1/listings",
				`{"title":"x","category":"gig","tags":[],"salary":100}`)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)

			fields := decodeError(rec).Error.Fields
			So(fields, ShouldContainKey, "description")
			So(fields, ShouldContainKey, "category")
			So(fields, ShouldContainKey, "salary")
		})

		Convey("When the poster creates a listing", func() {
			rec := call(env.listing.Create, poster, http.MethodPost, "/api/v1/listings", listingBody)
			So(rec.Code, ShouldEqual, http.StatusCreated)

			var listing domain.Listing
			So(json.Unmarshal(rec.Body.Bytes(), &listing), ShouldBeNil)
			id := listing.ID.String()

			Convey("A candidate viewing it gets their score", func() {
				rec := call(env.listing.View, cam, http.MethodGet, "/api/v1/listings/"+id, "", "id", id)
				So(rec.Code, ShouldEqual, http.StatusOK)

				var detail service.ListingDetail
				So(json.Unmarshal(rec.Body.Bytes(), &detail), ShouldBeNil)
				So(*detail.MatchScore, ShouldEqual, 67)
				So(detail.ViewCount, ShouldEqual, 1)
			})

			Convey("Matches for a candidate without overlap are empty", func() {
				rec := call(env.listing.Matches, dee, http.MethodGet, "/api/v1/listings/matches", "")
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(strings.TrimSpace(rec.Body.String()), ShouldEqual, "[]")
			})

			Convey("Only the owner can delete it", func() {
				rec := call(env.listing.Delete, rival, http.MethodDelete, "/api/v1/listings/"+id, "", "id", id)
				So(rec.Code, ShouldEqual, http.StatusForbidden)
				So(decodeError(rec).Error.Code, ShouldEqual, "NOT_LISTING_OWNER")

				rec = call(env.listing.Delete, poster, http.MethodDelete, "/api/v1/listings/"+id, "", "id", id)
				So(rec.Code, ShouldEqual, http.StatusNoContent)
			})

			Convey("A candidate applies once", func() {
				rec := call(env.application.Submit, cam, http.MethodPost, "/api/v1/listings/"+id+"/applications",
					`{"message":"Interested!"}`, "id", id)
				So(rec.Code, ShouldEqual, http.StatusCreated)

				var app domain.Application
				So(json.Unmarshal(rec.Body.Bytes(), &app), ShouldBeNil)
				So(app.Status, ShouldEqual, domain.StatusPending)
				appID := app.ID.String()

				rec = call(env.application.Submit, cam, http.MethodPost, "/api/v1/listings/"+id+"/applications",
					`{"message":"Again"}`, "id", id)
				So(rec.Code, ShouldEqual, http.StatusConflict)
				So(decodeError(rec).Error.Code, ShouldEqual, "DUPLICATE_APPLICATION")

				Convey("The poster lists it with a Pending label", func() {
					rec := call(env.application.List, poster, http.MethodGet, "/api/v1/applications?status=pending", "")
					So(rec.Code, ShouldEqual, http.StatusOK)

					var views []domain.ApplicationView
					So(json.Unmarshal(rec.Body.Bytes(), &views), ShouldBeNil)
					So(views, ShouldHaveLength, 1)
					So(views[0].StatusLabel, ShouldEqual, "Pending")
					So(views[0].Applicant.Name, ShouldEqual, "cam")

					rec = call(env.application.List, rival, http.MethodGet, "/api/v1/applications", "")
					So(strings.TrimSpace(rec.Body.String()), ShouldEqual, "[]")
				})

				Convey("Decisions are enforced", func() {
					rec := call(env.application.Decide, rival, http.MethodPatch, "/api/v1/applications/"+appID,
						`{"status":"accepted"}`, "id", appID)
					So(rec.Code, ShouldEqual, http.StatusForbidden)
					So(decodeError(rec).Error.Code, ShouldEqual, "NOT_LISTING_OWNER")

					rec = call(env.application.Decide, poster, http.MethodPatch, "/api/v1/applications/"+appID,
						`{"status":"maybe"}`, "id", appID)
					So(rec.Code, ShouldEqual, http.StatusBadRequest)

					rec = call(env.application.Decide, poster, http.MethodPatch, "/api/v1/applications/"+appID,
						`{"status":"shortlisted"}`, "id", appID)
					So(rec.Code, ShouldEqual, http.StatusOK)

					rec = call(env.application.Decide, poster, http.MethodPatch, "/api/v1/applications/"+appID,
						`{"status":"rejected"}`, "id", appID)
					So(rec.Code, ShouldEqual, http.StatusConflict)
					So(decodeError(rec).Error.Code, ShouldEqual, "INVALID_TRANSITION")
				})
			})
		})

		Convey("Unknown listings are 404 and bad ids 400", func() {
			missing := uuid.NewString()
			rec := call(env.listing.View, cam, http.MethodGet, "/api/v1/listings/"+missing, "", "id", missing)
			So(rec.Code, ShouldEqual, http.StatusNotFound)

			rec = call(env.listing.View, cam, http.MethodGet, "/api/v1/listings/abc", "", "id", "abc")
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestThreadHandlers(t *testing.T) {
	Convey("Given two correspondents and an outsider", t, func() {
		env := newTestEnv()
		ana := env.seed("ana", domain.RoleCandidate)
		ben := env.seed("ben", domain.RolePoster)
		cid := env.seed("cid", domain.RoleCandidate)

		rec := call(env.thread.Send, ana, http.MethodPost, "/api/v1/threads/"+ben.String()+"/messages",
			`{"text":"hello"}`, "userId", ben.String())
		So(rec.Code, ShouldEqual, http.StatusCreated)

		var msg domain.Message
		So(json.Unmarshal(rec.Body.Bytes(), &msg), ShouldBeNil)

		Convey("The recipient can read the thread", func() {
			rec := call(env.thread.Messages, ben, http.MethodGet, "/", "", "threadId", msg.ThreadID)
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, "hello")
		})

		Convey("The outsider cannot", func() {
			rec := call(env.thread.Messages, cid, http.MethodGet, "/", "", "threadId", msg.ThreadID)
			So(rec.Code, ShouldEqual, http.StatusForbidden)
			So(decodeError(rec).Error.Code, ShouldEqual, "NOT_PARTICIPANT")
		})

		Convey("Blank messages fail validation", func() {
			rec := call(env.thread.Send, ana, http.MethodPost, "/", `{"text":"  "}`, "userId", ben.String())
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(rec).Error.Fields, ShouldContainKey, "text")
		})

		Convey("Contacts exclude the caller", func() {
			rec := call(env.thread.Contacts, ana, http.MethodGet, "/api/v1/contacts", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldNotContainSubstring, `"ana"`)
			So(rec.Body.String(), ShouldContainSubstring, `"cid"`)
		})
	})
}

func TestUploadHandlers(t *testing.T) {
	Convey("Given a candidate uploading files", t, func() {
		env := newTestEnv()
		cam := env.seed("cam", domain.RoleCandidate)

		upload := func(h http.HandlerFunc, filename, contentType string, data []byte) *httptest.ResponseRecorder {
			var buf bytes.Buffer
			mw := multipart.NewWriter(&buf)
			header := textproto.MIMEHeader{}
			header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
			header.Set("Content-Type", contentType)
			part, _ := mw.CreatePart(header)
			part.Write(data)
			mw.Close()

			req := httptest.NewRequest(http.MethodPut, "/api/v1/me/avatar", &buf)
			req.Header.Set("Content-Type", mw.FormDataContentType())
			req = req.WithContext(middleware.WithAccountID(req.Context(), cam))
			rec := httptest.NewRecorder()
			h(rec, req)
			return rec
		}

		Convey("An avatar is stored and served back", func() {
			rec := upload(env.account.UploadAvatar, "me.png", "image/png", []byte("PNGDATA"))
			So(rec.Code, ShouldEqual, http.StatusOK)

			path := domain.AvatarPath(cam)
			rec = call(env.account.GetObject, cam, http.MethodGet, "/api/v1/objects/"+path, "", "path", path)
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Header().Get("Content-Type"), ShouldEqual, "image/png")
			So(rec.Body.String(), ShouldEqual, "PNGDATA")
		})

		Convey("A résumé with the wrong extension is refused", func() {
			rec := upload(env.account.UploadResume, "cv.txt", "text/plain", []byte("hi"))
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(rec).Error.Fields, ShouldContainKey, "file")
		})

		Convey("A missing file field is a validation error", func() {
			rec := call(env.account.UploadResume, cam, http.MethodPut, "/api/v1/me/resume", "")
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestDashboardHandler(t *testing.T) {
	Convey("A candidate's dashboard carries candidate stats only", t, func() {
		env := newTestEnv()
		cam := env.seed("cam", domain.RoleCandidate)

		rec := call(env.dashboard.Get, cam, http.MethodGet, "/api/v1/dashboard", "")
		So(rec.Code, ShouldEqual, http.StatusOK)
		So(rec.Body.String(), ShouldContainSubstring, `"candidate"`)
		So(rec.Body.String(), ShouldNotContainSubstring, `"poster":`)
	})
}

func TestWriteServiceError(t *testing.T) {
	Convey("Unrecognised errors become a generic 500", t, func() {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		writeServiceError(rec, req, logger.Nop(), "test", errors.New("connection reset by peer"))

		So(rec.Code, ShouldEqual, http.StatusInternalServerError)
		body := decodeError(rec)
		So(body.Error.Code, ShouldEqual, "INTERNAL")
		So(body.Error.Message, ShouldNotContainSubstring, "connection reset")
	})
}
