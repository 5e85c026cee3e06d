package postgres

import (
	"context"
	"testing"

	"github.com/frahmantamala/exeat-management/internal"
	"github.com/frahmantamala/exeat-management/internal/testutil"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func TestProfileRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "ProfileRepository Suite")
}

var _ = Describe("ProfileRepository", func() {
	var (
		ctx  context.Context
		db   *gorm.DB
		repo *ProfileRepository
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		db, err = testutil.NewMemoryDB()
		Expect(err).NotTo(HaveOccurred())
		repo = NewProfileRepository(db)
	})

	AfterEach(func() {
		Expect(testutil.Close(db)).To(Succeed())
	})

	It("loads a student with the guardian attached", func() {
		u, st, err := testutil.CreateStudent(db, "student@uni.edu")
		Expect(err).NotTo(HaveOccurred())

		got, err := repo.GetStudentByUserID(ctx, u.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.ID).To(Equal(st.ID))
		Expect(got.Guardian).NotTo(BeNil())
		Expect(got.Guardian.Name).To(Equal("Guardian of student@uni.edu"))
	})

	It("loads staff and security profiles by user id", func() {
		staffUser, staff, err := testutil.CreateStaff(db, "staff@uni.edu")
		Expect(err).NotTo(HaveOccurred())
		secUser, sec, err := testutil.CreateSecurityOperative(db, "gate@uni.edu")
		Expect(err).NotTo(HaveOccurred())

		gotStaff, err := repo.GetStaffByUserID(ctx, staffUser.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(gotStaff.ID).To(Equal(staff.ID))
		Expect(gotStaff.StaffID).To(Equal("STF-staff@uni.edu"))

		gotSec, err := repo.GetSecurityOperativeByUserID(ctx, secUser.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(gotSec.ID).To(Equal(sec.ID))
	})

	It("returns ErrProfileNotFound when the user has a different role", func() {
		staffUser, _, err := testutil.CreateStaff(db, "staff@uni.edu")
		Expect(err).NotTo(HaveOccurred())

		_, err = repo.GetStudentByUserID(ctx, staffUser.ID)
		Expect(err).To(MatchError(internal.ErrProfileNotFound))

		_, err = repo.GetSecurityOperativeByUserID(ctx, staffUser.ID)
		Expect(err).To(MatchError(internal.ErrProfileNotFound))
	})
})
