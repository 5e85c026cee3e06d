package rest_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/frahmantamala/exeat-management/api"
	"github.com/frahmantamala/exeat-management/internal/auth"
	authPostgres "github.com/frahmantamala/exeat-management/internal/auth/postgres"
	"github.com/frahmantamala/exeat-management/internal/exeat"
	exeatPostgres "github.com/frahmantamala/exeat-management/internal/exeat/postgres"
	"github.com/frahmantamala/exeat-management/internal/profile"
	profilePostgres "github.com/frahmantamala/exeat-management/internal/profile/postgres"
	revocationPostgres "github.com/frahmantamala/exeat-management/internal/revocation/postgres"
	"github.com/frahmantamala/exeat-management/internal/storage"
	"github.com/frahmantamala/exeat-management/internal/testutil"
	"github.com/frahmantamala/exeat-management/internal/transport/rest"
	"github.com/frahmantamala/exeat-management/internal/user"
	userPostgres "github.com/frahmantamala/exeat-management/internal/user/postgres"
	"github.com/frahmantamala/exeat-management/pkg/logger"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func TestRouter(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Router Suite")
}

const testSecret = "router-test-secret-that-is-long-enough"

type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

var _ = Describe("Router", func() {
	var (
		db        *gorm.DB
		router    *chi.Mux
		staticDir string
	)

	do := func(method, path, token string, body interface{}) *httptest.ResponseRecorder {
		var reader *bytes.Reader
		if body != nil {
			raw, err := json.Marshal(body)
			Expect(err).NotTo(HaveOccurred())
			reader = bytes.NewReader(raw)
		} else {
			reader = bytes.NewReader(nil)
		}
		req := httptest.NewRequest(method, path, reader)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	decode := func(rec *httptest.ResponseRecorder, dst interface{}) {
		ExpectWithOffset(1, json.Unmarshal(rec.Body.Bytes(), dst)).To(Succeed(), rec.Body.String())
	}

	errorCode := func(rec *httptest.ResponseRecorder) string {
		var e apiError
		decode(rec, &e)
		return e.Error.Code
	}

	signup := func(payload map[string]interface{}) string {
		rec := do(http.MethodPost, "/signup", "", payload)
		ExpectWithOffset(1, rec.Code).To(Equal(http.StatusCreated), rec.Body.String())
		var resp auth.SignupResponse
		decode(rec, &resp)
		return resp.AccessToken
	}

	signupStudent := func(email string) string {
		return signup(map[string]interface{}{
			"user_type":             "student",
			"email":                 email,
			"password":              "password123",
			"first_name":            "Ada",
			"last_name":             "Obi",
			"phone_number":          "+2348000000000",
			"matriculation_number":  "2021/12345",
			"course_of_study":       "Computer Science",
			"guardian_name":         "Mrs Obi",
			"guardian_phone_number": "+2348011111111",
			"guardian_relationship": "mother",
		})
	}

	signupStaff := func(email string) string {
		return signup(map[string]interface{}{
			"user_type":    "staff",
			"email":        email,
			"password":     "password123",
			"first_name":   "Bola",
			"last_name":    "Ade",
			"phone_number": "+2348022222222",
			"staff_id":     "STF-001",
			"designation":  "Hall warden",
		})
	}

	signupSecurity := func(email string) string {
		return signup(map[string]interface{}{
			"user_type":    "security_operative",
			"email":        email,
			"password":     "password123",
			"first_name":   "Chike",
			"last_name":    "Eze",
			"phone_number": "+2348033333333",
			"security_id":  "SEC-001",
			"designation":  "Gate officer",
		})
	}

	submit := func(token, reason string) exeat.View {
		start := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Second)
		rec := do(http.MethodPost, "/student/submit", token, map[string]interface{}{
			"leave_start": start,
			"leave_end":   start.Add(72 * time.Hour),
			"reason":      reason,
		})
		ExpectWithOffset(1, rec.Code).To(Equal(http.StatusCreated), rec.Body.String())
		var v exeat.View
		decode(rec, &v)
		return v
	}

	BeforeEach(func() {
		var err error
		db, err = testutil.NewMemoryDB()
		Expect(err).NotTo(HaveOccurred())
		staticDir = GinkgoT().TempDir()

		lg := logger.Discard()
		authService := auth.NewService(
			authPostgres.NewRepository(db),
			revocationPostgres.NewLedgerRepository(db),
			auth.NewJWTTokenGenerator(testSecret, 30*time.Minute),
			4,
			lg,
		)
		profileService := profile.NewService(profilePostgres.NewProfileRepository(db), lg)
		pictures := storage.NewLocalStore(staticDir + "/profile_pictures")
		userService := user.NewService(userPostgres.NewUserRepository(db), authService, profileService, pictures, 1<<20, lg)
		exeatService := exeat.NewService(exeatPostgres.NewExeatRepository(db), lg)

		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())

		router = chi.NewRouter()
		rest.RegisterAllRoutes(router, rest.Routes{
			DB:             sqlDB,
			DBComponent:    "sqlite",
			AuthHandler:    auth.NewHandler(authService),
			RBAC:           auth.NewRBACAuthorization(profileService, lg),
			UserHandler:    user.NewHandler(userService),
			ExeatHandler:   exeat.NewHandler(exeatService),
			OpenAPI:        api.Document(),
			StaticDir:      staticDir,
			AllowedOrigins: []string{"*"},
			Logger:         lg,
		})
	})

	AfterEach(func() {
		Expect(testutil.Close(db)).To(Succeed())
	})

	Describe("public routes", func() {
		It("answers health checks", func() {
			Expect(do(http.MethodGet, "/ping", "", nil).Code).To(Equal(http.StatusOK))

			rec := do(http.MethodGet, "/health", "", nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring(`"sqlite"`))
		})

		It("serves the OpenAPI document", func() {
			rec := do(http.MethodGet, "/openapi.yml", "", nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring("openapi: 3.0.3"))
		})
	})

	Describe("authentication", func() {
		It("rejects protected routes without a token", func() {
			rec := do(http.MethodGet, "/account", "", nil)
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
			Expect(rec.Header().Get("WWW-Authenticate")).To(Equal("Bearer"))
			Expect(errorCode(rec)).To(Equal("NOT_AUTHENTICATED"))
		})

		It("logs in with the OAuth2 password form", func() {
			signupStudent("ada@uni.edu")

			form := url.Values{"username": {"ada@uni.edu"}, "password": {"password123"}}
			req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			var tokens auth.AccessTokenResponse
			decode(rec, &tokens)
			Expect(tokens.TokenType).To(Equal("bearer"))
			Expect(do(http.MethodGet, "/account", tokens.AccessToken, nil).Code).To(Equal(http.StatusOK))
		})

		It("gives the same answer for a wrong password and an unknown email", func() {
			signupStudent("ada@uni.edu")

			wrong := do(http.MethodPost, "/token", "", map[string]string{"email": "ada@uni.edu", "password": "nope-nope"})
			unknown := do(http.MethodPost, "/token", "", map[string]string{"email": "who@uni.edu", "password": "nope-nope"})
			Expect(wrong.Code).To(Equal(http.StatusUnauthorized))
			Expect(unknown.Code).To(Equal(http.StatusUnauthorized))
			Expect(wrong.Body.String()).To(Equal(unknown.Body.String()))
		})

		It("stops accepting a token once it is revoked", func() {
			token := signupStudent("ada@uni.edu")

			Expect(do(http.MethodPost, "/revoke", token, nil).Code).To(Equal(http.StatusNoContent))

			rec := do(http.MethodGet, "/account", token, nil)
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
			Expect(errorCode(rec)).To(Equal("NOT_AUTHENTICATED"))
		})

		It("rejects duplicate sign-ups", func() {
			signupStudent("ada@uni.edu")
			rec := do(http.MethodPost, "/signup", "", map[string]interface{}{
				"user_type": "staff", "email": "ada@uni.edu", "password": "password123",
				"first_name": "A", "last_name": "B", "phone_number": "1",
				"staff_id": "S", "designation": "D",
			})
			Expect(rec.Code).To(Equal(http.StatusConflict))
			Expect(errorCode(rec)).To(Equal("EMAIL_TAKEN"))
		})
	})

	Describe("exeat lifecycle", func() {
		var studentToken, staffToken, securityToken string

		BeforeEach(func() {
			studentToken = signupStudent("ada@uni.edu")
			staffToken = signupStaff("warden@uni.edu")
			securityToken = signupSecurity("gate@uni.edu")
		})

		It("runs submit, approve and gate check end to end", func() {
			created := submit(studentToken, "Family event")
			Expect(created.Status).To(Equal("pending"))
			Expect(created.StaffDate).To(BeNil())

			rec := do(http.MethodGet, "/security/exeat", securityToken, nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			var page exeat.Page
			decode(rec, &page)
			Expect(page.TotalItems).To(BeZero())
			Expect(page.CurrentPage).To(BeZero())
			Expect(page.Items).To(BeEmpty())

			rec = do(http.MethodPost, fmt.Sprintf("/staff/approve/%d?comment=%s", created.ID, url.QueryEscape("Approved, safe travels")), staffToken, nil)
			Expect(rec.Code).To(Equal(http.StatusOK), rec.Body.String())
			var reviewed exeat.View
			decode(rec, &reviewed)
			Expect(reviewed.Status).To(Equal("approved"))
			Expect(*reviewed.StaffComment).To(Equal("Approved, safe travels"))
			Expect(reviewed.StaffDate).NotTo(BeNil())

			rec = do(http.MethodPost, fmt.Sprintf("/staff/deny/%d", created.ID), staffToken, map[string]string{"comment": "too late"})
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(errorCode(rec)).To(Equal("EXEAT_NOT_PENDING"))

			rec = do(http.MethodGet, fmt.Sprintf("/security/exeat/%d", created.ID), securityToken, nil)
			Expect(rec.Code).To(Equal(http.StatusOK))

			rec = do(http.MethodGet, "/student/exeat", studentToken, nil)
			decode(rec, &page)
			Expect(page.TotalItems).To(Equal(int64(1)))
			Expect(page.Items[0].Status).To(Equal("approved"))
		})

		It("keeps each role on its own routes", func() {
			created := submit(studentToken, "Medical appointment")

			rec := do(http.MethodGet, "/staff/exeat", studentToken, nil)
			Expect(rec.Code).To(Equal(http.StatusForbidden))
			Expect(errorCode(rec)).To(Equal("PROFILE_FORBIDDEN"))

			rec = do(http.MethodPost, fmt.Sprintf("/staff/approve/%d", created.ID), securityToken, nil)
			Expect(rec.Code).To(Equal(http.StatusForbidden))

			rec = do(http.MethodPost, "/student/submit", staffToken, map[string]string{"reason": "x"})
			Expect(rec.Code).To(Equal(http.StatusForbidden))

			rec = do(http.MethodGet, fmt.Sprintf("/security/exeat/%d", created.ID), securityToken, nil)
			Expect(rec.Code).To(Equal(http.StatusNotFound))
			Expect(errorCode(rec)).To(Equal("EXEAT_NOT_FOUND"))
		})

		It("hides other students' requests", func() {
			created := submit(studentToken, "Family event")
			other := signupStudent("bayo@uni.edu")

			rec := do(http.MethodGet, fmt.Sprintf("/student/exeat/%d", created.ID), other, nil)
			Expect(rec.Code).To(Equal(http.StatusNotFound))
		})

		It("validates list queries", func() {
			for _, q := range []string{"page=0", "page_size=101", "sort=reason", "status=archived", "ascending=maybe"} {
				rec := do(http.MethodGet, "/staff/exeat?"+q, staffToken, nil)
				Expect(rec.Code).To(Equal(http.StatusBadRequest), q)
				Expect(errorCode(rec)).To(Equal("INVALID_QUERY"), q)
			}

			rec := do(http.MethodGet, "/security/exeat?status=archived", securityToken, nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
		})

		It("rejects an inverted leave window", func() {
			start := time.Now().UTC().Add(48 * time.Hour)
			rec := do(http.MethodPost, "/student/submit", studentToken, map[string]interface{}{
				"leave_start": start,
				"leave_end":   start.Add(-time.Hour),
				"reason":      "backwards",
			})
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("clamps a page past the end", func() {
			for i := 0; i < 3; i++ {
				submit(studentToken, fmt.Sprintf("trip %d", i))
			}

			rec := do(http.MethodGet, "/staff/exeat?page=9&page_size=2", staffToken, nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			var page exeat.Page
			decode(rec, &page)
			Expect(page.TotalPages).To(Equal(2))
			Expect(page.CurrentPage).To(Equal(2))
			Expect(page.Items).To(HaveLen(1))
		})
	})

	Describe("account", func() {
		var token string

		BeforeEach(func() {
			token = signupStudent("ada@uni.edu")
		})

		It("returns the profile", func() {
			rec := do(http.MethodGet, "/account/profile", token, nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring(`"user_type":"student"`))
			Expect(rec.Body.String()).To(ContainSubstring(`"matriculation_number":"2021/12345"`))
		})

		It("changes the password", func() {
			rec := do(http.MethodPut, "/account/change-password", token, map[string]string{"old_password": "wrong-pass", "new_password": "brand-new-pass"})
			Expect(rec.Code).To(Equal(http.StatusForbidden))
			Expect(errorCode(rec)).To(Equal("INCORRECT_PASSWORD"))

			rec = do(http.MethodPut, "/account/change-password", token, map[string]string{"old_password": "password123", "new_password": "brand-new-pass"})
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring("Password updated successfully."))

			rec = do(http.MethodPost, "/token", "", map[string]string{"email": "ada@uni.edu", "password": "brand-new-pass"})
			Expect(rec.Code).To(Equal(http.StatusOK))
		})

		It("updates personal details", func() {
			rec := do(http.MethodPut, "/account/update", token, map[string]string{"first_name": "Adaeze"})
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring(`"first_name":"Adaeze"`))
		})

		It("uploads and serves a profile picture", func() {
			png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
			var body bytes.Buffer
			mw := multipart.NewWriter(&body)
			part, err := mw.CreateFormFile("file", "me.png")
			Expect(err).NotTo(HaveOccurred())
			_, err = part.Write(png)
			Expect(err).NotTo(HaveOccurred())
			Expect(mw.Close()).To(Succeed())

			req := httptest.NewRequest(http.MethodPost, "/account/upload-profile-picture", &body)
			req.Header.Set("Content-Type", mw.FormDataContentType())
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusOK), rec.Body.String())

			rec = do(http.MethodGet, "/account", token, nil)
			var view struct {
				ProfilePicture string `json:"profile_picture"`
			}
			decode(rec, &view)
			Expect(view.ProfilePicture).To(HavePrefix("/static/profile_pictures/"))

			rec = do(http.MethodGet, view.ProfilePicture, "", nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.Bytes()).To(Equal(png))
		})

		It("deletes the account and its token stops working", func() {
			submit(token, "Family event")

			rec := do(http.MethodDelete, "/account/delete", token, nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring("Account deleted successfully."))

			Expect(do(http.MethodGet, "/account", token, nil).Code).To(Equal(http.StatusUnauthorized))
		})
	})
})
