package expense

import (
	"bytes"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/xuri/excelize/v2"
)

var _ = Describe("exportWorkbook", func() {
	var (
		expenses []*Expense
		book     *excelize.File
	)

	BeforeEach(func() {
		expenses = []*Expense{
			{ID: "b", Date: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), Merchant: "Bar Centrale", Category: "cibo", Amount: 1250, DisplayName: "Anna", Confidence: 100, RawText: "..."},
			{ID: "a", Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Merchant: "Farmacia", Category: "salute", Amount: 890, DisplayName: "Marco", Confidence: 40, RawText: "..."},
		}
	})

	JustBeforeEach(func() {
		data, err := exportWorkbook(expenses)
		Expect(err).NotTo(HaveOccurred())
		book, err = excelize.OpenReader(bytes.NewReader(data))
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(book.Close)
	})

	It("writes a header row", func() {
		rows, err := book.GetRows(exportSheet)
		Expect(err).NotTo(HaveOccurred())
		Expect(rows[0]).To(Equal(exportHeaders))
	})

	It("writes one row per expense in order", func() {
		Expect(book.GetCellValue(exportSheet, "A2")).To(Equal("2024-03-10"))
		Expect(book.GetCellValue(exportSheet, "B2")).To(Equal("Bar Centrale"))
		Expect(book.GetCellValue(exportSheet, "B3")).To(Equal("Farmacia"))
		Expect(book.GetCellValue(exportSheet, "E3")).To(Equal("Marco"))
	})

	It("writes amounts in euros", func() {
		Expect(book.GetCellValue(exportSheet, "D2", excelize.Options{RawCellValue: true})).To(Equal("12.5"))
		Expect(book.GetCellValue(exportSheet, "D3", excelize.Options{RawCellValue: true})).To(Equal("8.9"))
	})

	It("adds a total formula", func() {
		Expect(book.GetCellValue(exportSheet, "C4")).To(Equal("Totale"))
		Expect(book.GetCellFormula(exportSheet, "D4")).To(Equal("SUM(D2:D3)"))
	})

	When("there are no expenses", func() {
		BeforeEach(func() {
			expenses = nil
		})

		It("only writes the header", func() {
			rows, err := book.GetRows(exportSheet)
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(1))
		})
	})
})
