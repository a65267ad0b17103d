package service

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/vedran77/campusconnect/internal/domain"
	"github.com/vedran77/campusconnect/pkg/validator"
)

func TestNormalizeTerms(t *testing.T) {
	Convey("Terms are trimmed and deduplicated keeping the first spelling", t, func() {
		So(NormalizeTerms([]string{" Go", "go ", "", "SQL", "GO", "  "}), ShouldResemble, []string{"Go", "SQL"})
		So(NormalizeTerms(nil), ShouldBeEmpty)
	})
}

func TestProfile(t *testing.T) {
	Convey("Given a candidate", t, func() {
		f := newFixture()
		cam := f.account("cam", domain.RoleCandidate)

		Convey("Updating the profile stores clean skills and bio", func() {
			bio := " Third year CS "
			updated, err := f.accountSvc.UpdateProfile(f.ctx, cam.ID, ProfileInput{
				Skills: []string{"Python", "python", " React "},
				Bio:    &bio,
			})
			So(err, ShouldBeNil)
			So(updated.Skills, ShouldResemble, []string{"Python", "React"})
			So(updated.Bio, ShouldEqual, "Third year CS")
			So(updated.Role, ShouldEqual, domain.RoleCandidate)

			stored, _ := f.accounts.GetByID(f.ctx, cam.ID)
			So(stored.Skills, ShouldResemble, []string{"Python", "React"})

			Convey("Omitted fields are left alone", func() {
				updated, err := f.accountSvc.UpdateProfile(f.ctx, cam.ID, ProfileInput{})
				So(err, ShouldBeNil)
				So(updated.Bio, ShouldEqual, "Third year CS")
				So(updated.Skills, ShouldHaveLength, 2)
			})
		})

		Convey("A missing account is not found", func() {
			_, err := f.accountSvc.GetProfile(f.ctx, uuid.New())
			So(err, ShouldEqual, ErrAccountNotFound)
		})

		Convey("A résumé upload is stored under the account", func() {
			data := []byte("%PDF-1.7")
			updated, err := f.accountSvc.UploadResume(f.ctx, cam.ID, "../../cv.pdf", "application/pdf", data)
			So(err, ShouldBeNil)
			So(*updated.ResumeRef, ShouldEqual, "resumes/"+cam.ID.String()+"/cv.pdf")

			obj, err := f.accountSvc.GetObject(f.ctx, *updated.ResumeRef)
			So(err, ShouldBeNil)
			So(bytes.Equal(obj.Data, data), ShouldBeTrue)
			So(obj.ContentType, ShouldEqual, "application/pdf")
		})

		Convey("Résumés must be documents", func() {
			_, err := f.accountSvc.UploadResume(f.ctx, cam.ID, "cv.exe", "", []byte("MZ"))
			var verrs validator.ValidationErrors
			So(errors.As(err, &verrs), ShouldBeTrue)
			So(verrs, ShouldContainKey, "file")
		})

		Convey("A new avatar replaces the old one", func() {
			_, err := f.accountSvc.UploadAvatar(f.ctx, cam.ID, "image/png", []byte("one"))
			So(err, ShouldBeNil)
			updated, err := f.accountSvc.UploadAvatar(f.ctx, cam.ID, "image/jpeg", []byte("two"))
			So(err, ShouldBeNil)
			So(*updated.AvatarRef, ShouldEqual, domain.AvatarPath(cam.ID))

			obj, err := f.accountSvc.GetObject(f.ctx, domain.AvatarPath(cam.ID))
			So(err, ShouldBeNil)
			So(string(obj.Data), ShouldEqual, "two")
			So(obj.ContentType, ShouldEqual, "image/jpeg")
		})

		Convey("Avatars must be images", func() {
			_, err := f.accountSvc.UploadAvatar(f.ctx, cam.ID, "text/plain", []byte("hi"))
			So(err, ShouldNotBeNil)
		})

		Convey("Unknown objects are not found", func() {
			_, err := f.accountSvc.GetObject(f.ctx, "profiles/nobody/avatar")
			So(err, ShouldEqual, ErrObjectNotFound)
		})
	})
}
