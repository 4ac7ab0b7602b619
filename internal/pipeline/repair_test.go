package pipeline

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("parseLenient", func() {
	var (
		text   string
		result map[string]any
		err    error
	)

	JustBeforeEach(func() {
		result, err = parseLenient(text)
	})

	When("the text is valid JSON", func() {
		BeforeEach(func() {
			text = `{"merchant_name": "Cafe", "total_amount": 5.5}`
		})

		It("decodes without repairs", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(HaveKeyWithValue("merchant_name", "Cafe"))
			Expect(result).To(HaveKeyWithValue("total_amount", 5.5))
		})
	})

	When("object keys are unquoted", func() {
		BeforeEach(func() {
			text = `{merchant_name: "Cafe", total_amount: 5}`
		})

		It("quotes the keys and decodes", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(HaveKeyWithValue("merchant_name", "Cafe"))
		})
	})

	When("strings are single-quoted", func() {
		BeforeEach(func() {
			text = `{"merchant_name": 'Corner Deli'}`
		})

		It("rewrites them to double quotes", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(HaveKeyWithValue("merchant_name", "Corner Deli"))
		})
	})

	When("a trailing comma dangles before the closing brace", func() {
		BeforeEach(func() {
			text = `{"total_amount": 5,}`
		})

		It("drops the comma", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(HaveKeyWithValue("total_amount", 5.0))
		})
	})

	When("a trailing comma dangles inside an array", func() {
		BeforeEach(func() {
			text = `{"items": [1, 2,]}`
		})

		It("drops the comma", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(HaveKey("items"))
		})
	})

	When("every repair is needed at once", func() {
		BeforeEach(func() {
			text = `{"merchant_name": 'Cafe', total_amount: 5.00,}`
		})

		It("recovers the full object", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(HaveKeyWithValue("merchant_name", "Cafe"))
			Expect(result).To(HaveKeyWithValue("total_amount", 5.00))
		})
	})

	When("the text is not JSON", func() {
		BeforeEach(func() {
			text = "not json at all"
		})

		It("returns an error", func() {
			Expect(err).To(HaveOccurred())
		})
	})

	When("the text is a JSON null", func() {
		BeforeEach(func() {
			text = "null"
		})

		It("returns an error", func() {
			Expect(err).To(HaveOccurred())
		})
	})

	When("content follows the object", func() {
		BeforeEach(func() {
			text = `{"a": 1} {"b": 2}`
		})

		It("returns an error", func() {
			Expect(err).To(HaveOccurred())
		})
	})
})
