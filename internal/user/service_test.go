package user_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/frahmantamala/exeat-management/internal"
	"github.com/frahmantamala/exeat-management/internal/core/reference"
	coreUser "github.com/frahmantamala/exeat-management/internal/core/user"
	"github.com/frahmantamala/exeat-management/internal/profile"
	"github.com/frahmantamala/exeat-management/internal/storage"
	"github.com/frahmantamala/exeat-management/internal/user"
	"github.com/frahmantamala/exeat-management/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestUser(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Suite")
}

type mockUserRepository struct {
	users       map[int64]*coreUser.User
	deleted     []int64
	updateErr   error
	passwordSet map[int64][]byte
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		users:       map[int64]*coreUser.User{},
		passwordSet: map[int64][]byte{},
	}
}

func (m *mockUserRepository) GetByID(_ context.Context, id int64) (*coreUser.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, internal.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

func (m *mockUserRepository) EmailTaken(_ context.Context, email string, exceptUserID int64) (bool, error) {
	for id, u := range m.users {
		if id != exceptUserID && u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepository) UpdateInfo(_ context.Context, u *coreUser.User) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	c := *u
	m.users[u.ID] = &c
	return nil
}

func (m *mockUserRepository) UpdatePassword(_ context.Context, userID int64, hash []byte) error {
	m.passwordSet[userID] = hash
	m.users[userID].HashedPassword = hash
	return nil
}

func (m *mockUserRepository) SetProfilePicture(_ context.Context, userID int64, pictureID string) error {
	m.users[userID].ProfilePictureID = &pictureID
	return nil
}

func (m *mockUserRepository) Delete(_ context.Context, userID int64) error {
	if _, ok := m.users[userID]; !ok {
		return internal.ErrUserNotFound
	}
	delete(m.users, userID)
	m.deleted = append(m.deleted, userID)
	return nil
}

// plainHasher stores passwords with a fixed prefix so tests stay fast.
type plainHasher struct{}

func (plainHasher) HashPassword(password string) ([]byte, error) {
	return []byte("hashed:" + password), nil
}

func (plainHasher) VerifyPassword(password string, hash []byte) bool {
	return bytes.Equal(hash, []byte("hashed:"+password))
}

type mockProfileReader struct {
	profiles map[int64]*profile.Profile
}

func (m *mockProfileReader) GetProfile(_ context.Context, userID int64) (*profile.Profile, error) {
	if p, ok := m.profiles[userID]; ok {
		return p, nil
	}
	return nil, internal.ErrProfileNotFound
}

var (
	pngHeader  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	jpegHeader = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00")
	webpHeader = []byte("RIFF\x24\x00\x00\x00WEBPVP8 ")
)

func strPtr(s string) *string { return &s }

var _ = Describe("Service", func() {
	var (
		ctx      context.Context
		repo     *mockUserRepository
		profiles *mockProfileReader
		store    *storage.LocalStore
		dir      string
		service  *user.Service
	)

	BeforeEach(func() {
		ctx = context.Background()
		repo = newMockUserRepository()
		repo.users[1] = &coreUser.User{
			ID:             1,
			FirstName:      "Ada",
			LastName:       "Obi",
			Email:          "ada@uni.edu",
			HashedPassword: []byte("hashed:password123"),
			IsActive:       true,
			UserType:       reference.UserTypeStudent,
		}
		repo.users[2] = &coreUser.User{ID: 2, Email: "taken@uni.edu", UserType: reference.UserTypeStaff}
		profiles = &mockProfileReader{profiles: map[int64]*profile.Profile{}}
		dir = GinkgoT().TempDir()
		store = storage.NewLocalStore(dir)
		service = user.NewService(repo, plainHasher{}, profiles, store, 1<<20, logger.Discard())
	})

	Describe("GetAccount", func() {
		It("returns the account view", func() {
			view, err := service.GetAccount(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(view.Email).To(Equal("ada@uni.edu"))
			Expect(view.UserType).To(Equal("student"))
			Expect(view.ProfilePicture).To(BeNil())
		})

		It("reports a missing user", func() {
			_, err := service.GetAccount(ctx, 99)
			Expect(errors.Is(err, internal.ErrUserNotFound)).To(BeTrue())
		})
	})

	Describe("UpdateAccount", func() {
		It("updates only the supplied fields", func() {
			view, err := service.UpdateAccount(ctx, 1, user.UpdateAccountDTO{FirstName: strPtr("  Adaeze ")})
			Expect(err).NotTo(HaveOccurred())
			Expect(view.FirstName).To(Equal("Adaeze"))
			Expect(view.LastName).To(Equal("Obi"))
			Expect(repo.users[1].FirstName).To(Equal("Adaeze"))
		})

		It("treats an empty update as a no-op", func() {
			repo.updateErr = errors.New("must not be called")
			view, err := service.UpdateAccount(ctx, 1, user.UpdateAccountDTO{})
			Expect(err).NotTo(HaveOccurred())
			Expect(view.FirstName).To(Equal("Ada"))
		})

		It("rejects an email used by another account", func() {
			_, err := service.UpdateAccount(ctx, 1, user.UpdateAccountDTO{Email: strPtr("taken@uni.edu")})
			Expect(errors.Is(err, internal.ErrEmailTaken)).To(BeTrue())
		})

		It("allows keeping the current email", func() {
			_, err := service.UpdateAccount(ctx, 1, user.UpdateAccountDTO{Email: strPtr("ada@uni.edu")})
			Expect(err).NotTo(HaveOccurred())
		})

		It("validates the email format", func() {
			_, err := service.UpdateAccount(ctx, 1, user.UpdateAccountDTO{Email: strPtr("not-an-email")})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("maps a storage uniqueness failure to a conflict", func() {
			repo.updateErr = internal.ErrEmailTaken
			_, err := service.UpdateAccount(ctx, 1, user.UpdateAccountDTO{Email: strPtr("new@uni.edu")})
			Expect(errors.Is(err, internal.ErrEmailTaken)).To(BeTrue())
		})
	})

	Describe("ChangePassword", func() {
		It("re-hashes the new password", func() {
			err := service.ChangePassword(ctx, 1, user.ChangePasswordDTO{OldPassword: "password123", NewPassword: "new-password"})
			Expect(err).NotTo(HaveOccurred())
			Expect(string(repo.passwordSet[1])).To(Equal("hashed:new-password"))
		})

		It("rejects a wrong old password", func() {
			err := service.ChangePassword(ctx, 1, user.ChangePasswordDTO{OldPassword: "wrong-one", NewPassword: "new-password"})
			Expect(errors.Is(err, internal.ErrIncorrectPassword)).To(BeTrue())
			Expect(repo.passwordSet).To(BeEmpty())
		})

		It("requires a long enough new password", func() {
			err := service.ChangePassword(ctx, 1, user.ChangePasswordDTO{OldPassword: "password123", NewPassword: "short"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeValidationFailed))
		})
	})

	Describe("GetProfile", func() {
		It("returns the resolved profile", func() {
			profiles.profiles[1] = &profile.Profile{UserType: "student", Profile: &coreUser.Student{ID: 7, UserID: 1}}
			p, err := service.GetProfile(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.UserType).To(Equal("student"))
		})

		It("reports accounts without a profile", func() {
			_, err := service.GetProfile(ctx, 2)
			Expect(errors.Is(err, internal.ErrProfileNotFound)).To(BeTrue())
		})
	})

	Describe("UploadProfilePicture", func() {
		It("stores a png under a fresh identifier", func() {
			Expect(service.UploadProfilePicture(ctx, 1, pngHeader)).To(Succeed())

			name := repo.users[1].ProfilePictureID
			Expect(name).NotTo(BeNil())
			Expect(filepath.Ext(*name)).To(Equal(".png"))
			Expect(filepath.Join(dir, *name)).To(BeAnExistingFile())

			view, err := service.GetAccount(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(*view.ProfilePicture).To(Equal("/static/profile_pictures/" + *name))
		})

		It("reuses the identifier and drops the old file on re-upload", func() {
			Expect(service.UploadProfilePicture(ctx, 1, pngHeader)).To(Succeed())
			first := *repo.users[1].ProfilePictureID

			Expect(service.UploadProfilePicture(ctx, 1, jpegHeader)).To(Succeed())
			second := *repo.users[1].ProfilePictureID

			Expect(second[:len(second)-len(filepath.Ext(second))]).To(Equal(first[:len(first)-len(filepath.Ext(first))]))
			Expect(filepath.Ext(second)).To(Equal(".jpeg"))
			Expect(filepath.Join(dir, first)).NotTo(BeAnExistingFile())
			Expect(filepath.Join(dir, second)).To(BeAnExistingFile())
		})

		It("accepts webp", func() {
			Expect(service.UploadProfilePicture(ctx, 1, webpHeader)).To(Succeed())
			Expect(filepath.Ext(*repo.users[1].ProfilePictureID)).To(Equal(".webp"))
		})

		It("rejects other content", func() {
			err := service.UploadProfilePicture(ctx, 1, []byte("GIF89a......"))
			Expect(errors.Is(err, internal.ErrUnsupportedMedia)).To(BeTrue())
			Expect(repo.users[1].ProfilePictureID).To(BeNil())
		})

		It("rejects oversized pictures", func() {
			small := user.NewService(repo, plainHasher{}, profiles, store, 8, logger.Discard())
			err := small.UploadProfilePicture(ctx, 1, pngHeader)
			Expect(errors.Is(err, internal.ErrPictureTooLarge)).To(BeTrue())
		})
	})

	Describe("DeleteAccount", func() {
		It("deletes the user and its picture", func() {
			Expect(service.UploadProfilePicture(ctx, 1, pngHeader)).To(Succeed())
			name := *repo.users[1].ProfilePictureID

			Expect(service.DeleteAccount(ctx, 1)).To(Succeed())
			Expect(repo.deleted).To(ConsistOf(int64(1)))

			_, err := os.Stat(filepath.Join(dir, name))
			Expect(os.IsNotExist(err)).To(BeTrue())
		})

		It("reports a missing user", func() {
			err := service.DeleteAccount(ctx, 42)
			Expect(errors.Is(err, internal.ErrUserNotFound)).To(BeTrue())
		})
	})
})
