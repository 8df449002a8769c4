package conversation

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LocalWorkspace", func() {
	var (
		base      string
		workspace *LocalWorkspace
	)

	BeforeEach(func() {
		var err error
		base, err = os.MkdirTemp("", "workspace-test-*")
		Expect(err).NotTo(HaveOccurred())

		workspace, err = NewLocalWorkspace(base)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(base)
	})

	Describe("Create", func() {
		It("should allocate a directory under the base", func() {
			dir, err := workspace.Create("user-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(dir).To(Equal(filepath.Join(base, "user-1")))
			Expect(dir).To(BeADirectory())
		})

		It("should reuse an existing directory", func() {
			first, err := workspace.Create("user-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(workspace.SaveText(first, "note.txt", "keep me")).To(Succeed())

			second, err := workspace.Create("user-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(second).To(Equal(first))
			Expect(filepath.Join(second, "note.txt")).To(BeAnExistingFile())
		})
	})

	Describe("SaveTicket", func() {
		var dir string

		BeforeEach(func() {
			var err error
			dir, err = workspace.Create("user-1")
			Expect(err).NotTo(HaveOccurred())
		})

		It("should pick the extension from the content type", func() {
			path, err := workspace.SaveTicket(dir, []byte("pdf bytes"), "application/pdf")
			Expect(err).NotTo(HaveOccurred())
			Expect(path).To(Equal(filepath.Join(dir, "ticket.pdf")))

			data, err := os.ReadFile(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(data).To(Equal([]byte("pdf bytes")))
		})

		It("should default to jpg for unknown content types", func() {
			path, err := workspace.SaveTicket(dir, []byte("bytes"), "application/octet-stream")
			Expect(err).NotTo(HaveOccurred())
			Expect(filepath.Base(path)).To(Equal("ticket.jpg"))
		})

		It("should map HEIC content types", func() {
			path, err := workspace.SaveTicket(dir, []byte("bytes"), "image/heic")
			Expect(err).NotTo(HaveOccurred())
			Expect(filepath.Base(path)).To(Equal("ticket.heic"))
		})
	})

	Describe("SaveText", func() {
		It("should write the artifact into the directory", func() {
			dir, err := workspace.Create("user-1")
			Expect(err).NotTo(HaveOccurred())

			Expect(workspace.SaveText(dir, "ticket_ocr.txt", "ICE 1537")).To(Succeed())

			data, err := os.ReadFile(filepath.Join(dir, "ticket_ocr.txt"))
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal("ICE 1537"))
		})
	})

	Describe("Delete", func() {
		It("should remove the user directory", func() {
			dir, err := workspace.Create("user-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(workspace.SaveText(dir, "note.txt", "x")).To(Succeed())

			Expect(workspace.Delete(dir)).To(Succeed())
			Expect(dir).NotTo(BeADirectory())
		})

		It("should refuse paths outside the base", func() {
			outside, err := os.MkdirTemp("", "outside-*")
			Expect(err).NotTo(HaveOccurred())
			defer os.RemoveAll(outside)

			Expect(workspace.Delete(outside)).NotTo(Succeed())
			Expect(outside).To(BeADirectory())
		})

		It("should refuse the base itself", func() {
			Expect(workspace.Delete(base)).NotTo(Succeed())
			Expect(base).To(BeADirectory())
		})
	})

	Describe("Sweep", func() {
		It("should remove every user directory", func() {
			dir1, err := workspace.Create("user-1")
			Expect(err).NotTo(HaveOccurred())
			dir2, err := workspace.Create("user-2")
			Expect(err).NotTo(HaveOccurred())

			Expect(workspace.Sweep()).To(Succeed())
			Expect(dir1).NotTo(BeADirectory())
			Expect(dir2).NotTo(BeADirectory())
			Expect(base).To(BeADirectory())
		})

		It("should succeed on an empty base", func() {
			Expect(workspace.Sweep()).To(Succeed())
		})
	})
})

var _ = Describe("Store", func() {
	It("should return sessions it holds", func() {
		store := NewStore(time.Hour, nil)
		s := NewSession("sess-1", "user-1")
		store.Put(s)

		got, ok := store.Get("user-1")
		Expect(ok).To(BeTrue())
		Expect(got).To(BeIdenticalTo(s))
		Expect(store.Len()).To(Equal(1))
	})

	It("should refuse to add over a live session", func() {
		store := NewStore(time.Hour, nil)
		first := NewSession("sess-1", "user-1")
		Expect(store.Add(first)).To(BeTrue())
		Expect(store.Add(NewSession("sess-2", "user-1"))).To(BeFalse())

		got, ok := store.Get("user-1")
		Expect(ok).To(BeTrue())
		Expect(got).To(BeIdenticalTo(first))
	})

	It("should miss unknown users", func() {
		store := NewStore(time.Hour, nil)
		_, ok := store.Get("nobody")
		Expect(ok).To(BeFalse())
	})

	It("should fire the eviction hook on delete", func() {
		var evicted []*Session
		store := NewStore(time.Hour, func(s *Session) {
			evicted = append(evicted, s)
		})
		s := NewSession("sess-1", "user-1")
		store.Put(s)

		store.Delete("user-1")
		Expect(evicted).To(ConsistOf(s))
		Expect(store.Len()).To(BeZero())
	})
})
