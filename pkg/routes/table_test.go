package routes_test

import (
	"mercator-hq/ipecho/pkg/introspect"
	"mercator-hq/ipecho/pkg/routes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Table", func() {
	Describe("NewTable", func() {
		Context("when no paths are given", func() {
			It("exposes every canonical route", func() {
				table, err := routes.NewTable(nil)
				Expect(err).NotTo(HaveOccurred())
				Expect(table.Paths()).To(Equal(routes.CanonicalPaths()))
				Expect(table.Paths()).To(HaveLen(12))
			})

			It("advertises every route but the landing page", func() {
				table, err := routes.NewTable(nil)
				Expect(err).NotTo(HaveOccurred())
				Expect(table.Listing()).To(Equal([]string{
					"/ip", "/ua", "/all",
					"/raw/ip", "/raw/headers", "/raw/useragent", "/raw/all",
					"/json/ip", "/json/headers", "/json/useragent", "/json/all",
				}))
			})
		})

		Context("when a subset is given", func() {
			It("keeps canonical order regardless of input order", func() {
				table, err := routes.NewTable([]string{"/json/ip", "/", "/ip"})
				Expect(err).NotTo(HaveOccurred())
				Expect(table.Paths()).To(Equal([]string{"/", "/ip", "/json/ip"}))
				Expect(table.Listing()).To(Equal([]string{"/ip", "/json/ip"}))
			})
		})

		Context("when an unknown path is given", func() {
			It("returns an error", func() {
				_, err := routes.NewTable([]string{"/ip", "/nope"})
				Expect(err).To(MatchError(ContainSubstring(`"/nope"`)))
			})
		})
	})

	Describe("Lookup", func() {
		var table *routes.Table

		BeforeEach(func() {
			var err error
			table, err = routes.NewTable(nil)
			Expect(err).NotTo(HaveOccurred())
		})

		DescribeTable("maps paths to formats",
			func(path string, want introspect.Format) {
				got, ok := table.Lookup(path)
				Expect(ok).To(BeTrue())
				Expect(got).To(Equal(want))
			},
			Entry("landing", "/", introspect.PlainDefaultLanding),
			Entry("ip", "/ip", introspect.PlainAddressOnly),
			Entry("raw ip", "/raw/ip", introspect.PlainAddressOnly),
			Entry("ua", "/ua", introspect.PlainUserAgentOnly),
			Entry("raw useragent", "/raw/useragent", introspect.PlainUserAgentOnly),
			Entry("all", "/all", introspect.PlainCombinedDump),
			Entry("raw all", "/raw/all", introspect.PlainCombinedDump),
			Entry("raw headers", "/raw/headers", introspect.PlainHeaderDump),
			Entry("json ip", "/json/ip", introspect.StructuredAddressOnly),
			Entry("json useragent", "/json/useragent", introspect.StructuredUserAgentOnly),
			Entry("json headers", "/json/headers", introspect.StructuredHeaderDump),
			Entry("json all", "/json/all", introspect.StructuredCombinedDump),
		)

		It("does not match prefixes or trailing slashes", func() {
			_, ok := table.Lookup("/ip/")
			Expect(ok).To(BeFalse())
			_, ok = table.Lookup("/raw")
			Expect(ok).To(BeFalse())
		})
	})

	It("hands out copies", func() {
		table, err := routes.NewTable(nil)
		Expect(err).NotTo(HaveOccurred())

		rs := table.Routes()
		rs[0].Path = "/mutated"
		Expect(table.Routes()[0].Path).To(Equal("/"))

		listing := table.Listing()
		listing[0] = "/mutated"
		Expect(table.Listing()[0]).To(Equal("/ip"))
	})
})
