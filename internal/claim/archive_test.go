package claim

import (
	"errors"
	"path/filepath"
	"time"

	ginkgo "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = ginkgo.Describe("BoltArchive", func() {
	var (
		archive *BoltArchive
	)

	ginkgo.BeforeEach(func() {
		var err error
		archive, err = NewBoltArchive(filepath.Join(ginkgo.GinkgoT().TempDir(), "claims.db"))
		Expect(err).NotTo(HaveOccurred())
	})

	ginkgo.AfterEach(func() {
		if archive != nil {
			archive.Close()
		}
	})

	ginkgo.Describe("SaveRecord", func() {
		var (
			record *Record
			err    error
		)

		ginkgo.BeforeEach(func() {
			record = &Record{
				Claim: Claim{
					ID:        "claim-1",
					SessionID: "session-1",
					UserID:    "user-1",
					Cause:     CauseDelayed,
					Fields:    map[string]string{"train_number": "ICE 1537"},
					Complete:  true,
				},
				SubmittedAt: time.Date(2024, 5, 3, 12, 0, 0, 0, time.UTC),
			}
		})

		ginkgo.JustBeforeEach(func() {
			err = archive.SaveRecord(record)
		})

		ginkgo.It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		ginkgo.It("should round-trip the record", func() {
			stored, getErr := archive.GetRecord("claim-1")
			Expect(getErr).NotTo(HaveOccurred())
			Expect(stored.Claim).To(Equal(record.Claim))
			Expect(stored.SubmittedAt.Equal(record.SubmittedAt)).To(BeTrue())
		})
	})

	ginkgo.Describe("GetRecord", func() {
		ginkgo.When("the claim does not exist", func() {
			ginkgo.It("should return an error", func() {
				_, err := archive.GetRecord("missing")
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("not found"))
			})
		})
	})

	ginkgo.Describe("ListRecords", func() {
		ginkgo.When("the archive is empty", func() {
			ginkgo.It("should return an empty slice", func() {
				records, err := archive.ListRecords()
				Expect(err).NotTo(HaveOccurred())
				Expect(records).To(BeEmpty())
			})
		})

		ginkgo.When("records were saved", func() {
			ginkgo.BeforeEach(func() {
				for _, id := range []string{"a", "b", "c"} {
					err := archive.SaveRecord(&Record{Claim: Claim{ID: id, Cause: CauseCancelled}})
					Expect(err).NotTo(HaveOccurred())
				}
			})

			ginkgo.It("should return all of them", func() {
				records, err := archive.ListRecords()
				Expect(err).NotTo(HaveOccurred())
				Expect(records).To(HaveLen(3))
			})
		})
	})
})

var _ = ginkgo.Describe("LocalFormFiller", func() {
	ginkgo.It("should write the claim artifact into the working directory", func() {
		dir := ginkgo.GinkgoT().TempDir()
		c := Claim{ID: "claim-9", Cause: CauseDelayed, Fields: map[string]string{"train_number": "123"}, Complete: true}

		Expect(LocalFormFiller{}.Submit(dir, c)).To(Succeed())
		Expect(filepath.Join(dir, "claim_claim-9.json")).To(BeAnExistingFile())
	})

	ginkgo.It("should wrap write failures as a submission error", func() {
		c := Claim{ID: "claim-10"}
		err := LocalFormFiller{}.Submit(filepath.Join(ginkgo.GinkgoT().TempDir(), "does-not-exist"), c)

		Expect(err).To(HaveOccurred())
		var subErr *SubmissionError
		Expect(errors.As(err, &subErr)).To(BeTrue())
		Expect(subErr.ClaimID).To(Equal("claim-10"))
	})
})
