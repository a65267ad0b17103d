package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/vedran77/campusconnect/internal/domain"
	"github.com/vedran77/campusconnect/pkg/validator"
)

func TestCreateListing(t *testing.T) {
	Convey("Given a poster and a candidate", t, func() {
		f := newFixture()
		poster := f.account("pat", domain.RolePoster)
		candidate := f.account("cam", domain.RoleCandidate)

		input := CreateListingInput{
			Title:       "  Research assistant ",
			Description: "Help with lab work",
			Category:    "internship",
			Tags:        []string{"Python", " python ", "", "ML"},
		}

		Convey("The poster can create a listing with normalized tags", func() {
			l, err := f.listingSvc.Create(f.ctx, poster.ID, input)
			So(err, ShouldBeNil)
			So(l.Title, ShouldEqual, "Research assistant")
			So(l.Tags, ShouldResemble, []string{"Python", "ML"})
			So(l.Category, ShouldEqual, domain.CategoryInternship)
			So(l.ViewCount, ShouldEqual, 0)

			stored, _ := f.listings.GetByID(f.ctx, l.ID)
			So(stored, ShouldNotBeNil)
		})

		Convey("A candidate cannot create listings", func() {
			_, err := f.listingSvc.Create(f.ctx, candidate.ID, input)
			So(err, ShouldEqual, ErrNotPoster)
		})

		Convey("Invalid input is reported per field", func() {
			input.Title = ""
			input.Category = "gig"
			_, err := f.listingSvc.Create(f.ctx, poster.ID, input)

			var verrs validator.ValidationErrors
			So(errors.As(err, &verrs), ShouldBeTrue)
			So(verrs, ShouldContainKey, "title")
			So(verrs, ShouldContainKey, "category")
		})
	})
}

func TestViewListing(t *testing.T) {
	Convey("Given a listing", t, func() {
		f := newFixture()
		poster := f.account("pat", domain.RolePoster)
		candidate := f.account("cam", domain.RoleCandidate, "go")
		listing := f.listing(poster, "Backend", time.Hour, "Go", "SQL")

		Convey("Every view counts, including the owner's", func() {
			d, err := f.listingSvc.View(f.ctx, poster.ID, listing.ID)
			So(err, ShouldBeNil)
			So(d.ViewCount, ShouldEqual, 1)
			So(d.MatchScore, ShouldBeNil)

			d, err = f.listingSvc.View(f.ctx, candidate.ID, listing.ID)
			So(err, ShouldBeNil)
			So(d.ViewCount, ShouldEqual, 2)
			So(*d.MatchScore, ShouldEqual, 50)
			So(d.Owner.Name, ShouldEqual, "pat")

			d, err = f.listingSvc.View(f.ctx, candidate.ID, listing.ID)
			So(err, ShouldBeNil)
			So(d.ViewCount, ShouldEqual, 3)

			expected := `
# HELP campusconnect_listing_views_total Listing detail views, owner views included.
# TYPE campusconnect_listing_views_total counter
campusconnect_listing_views_total 3
`
			err = testutil.GatherAndCompare(f.metrics.Registry(), strings.NewReader(expected), "campusconnect_listing_views_total")
			So(err, ShouldBeNil)
		})

		Convey("A viewer whose account is gone is rejected before the view counts", func() {
			_, err := f.listingSvc.View(f.ctx, uuid.New(), listing.ID)
			So(err, ShouldEqual, ErrAccountNotFound)

			stored, err := f.listings.GetByID(f.ctx, listing.ID)
			So(err, ShouldBeNil)
			So(stored.ViewCount, ShouldEqual, 0)
		})

		Convey("A missing listing is not found", func() {
			_, err := f.listingSvc.View(f.ctx, candidate.ID, uuid.New())
			So(err, ShouldEqual, ErrListingNotFound)
		})

		Convey("Only the owner can delete it", func() {
			So(f.listingSvc.Delete(f.ctx, candidate.ID, listing.ID), ShouldEqual, ErrNotListingOwner)
			So(f.listingSvc.Delete(f.ctx, poster.ID, listing.ID), ShouldBeNil)
			So(f.listingSvc.Delete(f.ctx, poster.ID, listing.ID), ShouldEqual, ErrListingNotFound)
		})
	})
}

func TestBrowseAndMatches(t *testing.T) {
	Convey("Given listings of varying age and overlap", t, func() {
		f := newFixture()
		poster := f.account("pat", domain.RolePoster)
		candidate := f.account("cam", domain.RoleCandidate, "Python", "React")

		oldFull := f.listing(poster, "Old full match", 3*time.Hour, "python", "react")
		newHalf := f.listing(poster, "New half match", time.Hour, "Python", "Java")
		none := f.listing(poster, "No overlap", 2*time.Hour, "Rust")
		tagless := f.listing(poster, "Tagless", 30*time.Minute)

		Convey("Browse returns everything newest first", func() {
			list, err := f.listingSvc.Browse(f.ctx, candidate.ID, BrowseQuery{})
			So(err, ShouldBeNil)
			So(ids(list), ShouldResemble, []uuid.UUID{tagless.ID, newHalf.ID, none.ID, oldFull.ID})
			So(*list[0].MatchScore, ShouldEqual, 0)
		})

		Convey("Posters browse without scores", func() {
			list, err := f.listingSvc.Browse(f.ctx, poster.ID, BrowseQuery{})
			So(err, ShouldBeNil)
			So(list[0].MatchScore, ShouldBeNil)
		})

		Convey("Search matches tags as substrings", func() {
			list, err := f.listingSvc.Browse(f.ctx, candidate.ID, BrowseQuery{Search: "RUS"})
			So(err, ShouldBeNil)
			So(ids(list), ShouldResemble, []uuid.UUID{none.ID})
		})

		Convey("An unknown category is rejected", func() {
			_, err := f.listingSvc.Browse(f.ctx, candidate.ID, BrowseQuery{Category: "gig"})
			So(errors.Is(err, domain.ErrUnknownValue), ShouldBeTrue)
		})

		Convey("Category filters", func() {
			list, err := f.listingSvc.Browse(f.ctx, candidate.ID, BrowseQuery{Category: "project"})
			So(err, ShouldBeNil)
			So(list, ShouldBeEmpty)
		})

		Convey("Matches drops zero scores and sorts by score", func() {
			list, err := f.listingSvc.Matches(f.ctx, candidate.ID, SortByScore)
			So(err, ShouldBeNil)
			So(ids(list), ShouldResemble, []uuid.UUID{oldFull.ID, newHalf.ID})
			So(*list[0].MatchScore, ShouldEqual, 100)
			So(list[0].MatchBand, ShouldEqual, "strong")
		})

		Convey("Matches can sort by recency", func() {
			list, err := f.listingSvc.Matches(f.ctx, candidate.ID, SortByRecent)
			So(err, ShouldBeNil)
			So(ids(list), ShouldResemble, []uuid.UUID{newHalf.ID, oldFull.ID})
		})

		Convey("Matches rejects posters and unknown sorts", func() {
			_, err := f.listingSvc.Matches(f.ctx, poster.ID, "")
			So(err, ShouldEqual, ErrNotCandidate)

			_, err = f.listingSvc.Matches(f.ctx, candidate.ID, "views")
			So(err, ShouldEqual, ErrInvalidSort)
		})
	})
}

func TestSortScoredIsStable(t *testing.T) {
	Convey("Equal scores keep their incoming order", t, func() {
		score := func(n int) *int { return &n }
		now := time.Now()
		list := []domain.ScoredListing{
			{Listing: domain.Listing{Title: "a", CreatedAt: now}, MatchScore: score(50)},
			{Listing: domain.Listing{Title: "b", CreatedAt: now}, MatchScore: score(80)},
			{Listing: domain.Listing{Title: "c", CreatedAt: now}, MatchScore: score(50)},
			{Listing: domain.Listing{Title: "d", CreatedAt: now}, MatchScore: score(80)},
		}

		SortScored(list, SortByScore)
		titles := make([]string, len(list))
		for i, l := range list {
			titles[i] = l.Title
		}
		So(titles, ShouldResemble, []string{"b", "d", "a", "c"})

		SortScored(list, SortByRecent)
		So(list[0].Title, ShouldEqual, "b")
	})
}

func ids(list []domain.ScoredListing) []uuid.UUID {
	out := make([]uuid.UUID, len(list))
	for i, l := range list {
		out[i] = l.ID
	}
	return out
}
