package expense

import (
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("BoltDB", func() {
	var (
		dbPath string
		db     *BoltDB
	)

	BeforeEach(func() {
		dbPath = filepath.Join(GinkgoT().TempDir(), "test.db")
		var err error
		db, err = NewBoltDB(dbPath)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	newExpense := func(id string) *Expense {
		return &Expense{
			ID:          id,
			GroupID:     "family",
			UserID:      "u1",
			DisplayName: "Anna",
			Category:    "cibo",
			Amount:      1250,
			Date:        time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
			Merchant:    "Bar Centrale",
			ReceiptFile: id + "_scontrino.png",
			ContentType: "image/png",
			Confidence:  100,
			RawText:     "BAR CENTRALE\nTOTALE € 12,50",
			CreatedAt:   time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
			UpdatedAt:   time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
		}
	}

	Describe("SaveExpense and GetExpense", func() {
		It("round trips every field", func() {
			expense := newExpense("e1")
			Expect(db.SaveExpense(expense)).To(Succeed())

			got, err := db.GetExpense("e1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(expense))
		})

		It("replaces an existing expense", func() {
			expense := newExpense("e1")
			Expect(db.SaveExpense(expense)).To(Succeed())
			expense.Amount = 999
			Expect(db.SaveExpense(expense)).To(Succeed())

			got, err := db.GetExpense("e1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Amount).To(Equal(999))
		})

		It("reports missing expenses as not found", func() {
			_, err := db.GetExpense("missing")
			Expect(err).To(MatchError(ErrNotFound))
		})
	})

	Describe("ListExpenses", func() {
		It("returns an empty list for a new database", func() {
			Expect(db.ListExpenses()).To(BeEmpty())
		})

		It("returns every expense", func() {
			Expect(db.SaveExpense(newExpense("e1"))).To(Succeed())
			Expect(db.SaveExpense(newExpense("e2"))).To(Succeed())
			Expect(db.ListExpenses()).To(HaveLen(2))
		})
	})

	Describe("DeleteExpense", func() {
		It("removes the expense", func() {
			Expect(db.SaveExpense(newExpense("e1"))).To(Succeed())
			Expect(db.DeleteExpense("e1")).To(Succeed())
			_, err := db.GetExpense("e1")
			Expect(err).To(MatchError(ErrNotFound))
		})

		It("ignores missing expenses", func() {
			Expect(db.DeleteExpense("missing")).To(Succeed())
		})
	})

	Describe("reopening", func() {
		It("keeps data on disk", func() {
			Expect(db.SaveExpense(newExpense("e1"))).To(Succeed())
			Expect(db.Close()).To(Succeed())

			var err error
			db, err = NewBoltDB(dbPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(db.ListExpenses()).To(HaveLen(1))
		})
	})
})
