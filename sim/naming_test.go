package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("TokenizedName", func() {
	It("should parse name", func() {
		name := ParseName("Cache[0].Top[0]")
		Expect(name.Tokens[0].ElemName).To(Equal("Cache"))
		Expect(name.Tokens[0].Index).To(Equal([]int{0}))
		Expect(name.Tokens[1].ElemName).To(Equal("Top"))
		Expect(name.Tokens[1].Index).To(Equal([]int{0}))
	})

	It("should parse multi-dimensional index", func() {
		name := ParseName("Cache[0][1].Top[0][1]")
		Expect(name.Tokens[0].ElemName).To(Equal("Cache"))
		Expect(name.Tokens[0].Index).To(Equal([]int{0, 1}))
		Expect(name.Tokens[1].ElemName).To(Equal("Top"))
		Expect(name.Tokens[1].Index).To(Equal([]int{0, 1}))
	})

	It("should panic if the name is empty", func() {
		Expect(func() { NameMustBeValid("") }).To(Panic())
	})

	It("should panic if name includes underscore", func() {
		Expect(func() { NameMustBeValid("Cache_0") }).To(Panic())
	})

	It("should panic if name includes dash", func() {
		Expect(func() { NameMustBeValid("Cache-0") }).To(Panic())
	})

	It("should panic if name is not capitalized CamelCase", func() {
		Expect(func() { NameMustBeValid("cache0") }).To(Panic())
	})

	It("should have paired square brackets", func() {
		Expect(func() { NameMustBeValid("Cache[0") }).To(Panic())
	})

	It("should have paired square brackets", func() {
		Expect(func() { NameMustBeValid("Cache0]") }).To(Panic())
	})

	It("should panic if element name is empty", func() {
		Expect(func() { NameMustBeValid("Cache..0") }).To(Panic())
	})

	It("should build name", func() {
		Expect(BuildName("", "Cache")).To(Equal("Cache"))
		Expect(BuildName("Cache", "Top")).To(Equal("Cache.Top"))
	})

	It("should build name with index", func() {
		Expect(BuildNameWithIndex("", "Cache", 0)).To(Equal("Cache[0]"))
		Expect(BuildNameWithIndex("Cache", "Top", 1)).To(Equal("Cache.Top[1]"))
	})
})
