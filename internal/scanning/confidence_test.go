package scanning

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Confidence", func() {
	DescribeTable("scores by field presence",
		func(hasAmount, hasDate, hasMerchant bool, expected int) {
			Expect(Confidence(hasAmount, hasDate, hasMerchant)).To(Equal(expected))
		},
		Entry("nothing found", false, false, false, 0),
		Entry("amount only", true, false, false, 40),
		Entry("date only", false, true, false, 30),
		Entry("merchant only", false, false, true, 30),
		Entry("amount and date", true, true, false, 70),
		Entry("amount and merchant", true, false, true, 70),
		Entry("date and merchant", false, true, true, 60),
		Entry("everything, capped", true, true, true, 100),
	)
})
