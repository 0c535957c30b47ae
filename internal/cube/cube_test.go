package cube_test

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/solver-dispatch/internal/cube"
	"github.com/angeloszaimis/solver-dispatch/internal/solver"
)

const solved = "UUUUUUUUURRRRRRRRRFFFFFFFFFDDDDDDDDDLLLLLLLLLBBBBBBBBB"

var _ = Describe("Normalize", func() {
	It("should trim and upper-case", func() {
		Expect(cube.Normalize("  uuR\n")).To(Equal("UUR"))
	})
})

var _ = Describe("Validate", func() {
	It("should accept a solved cube", func() {
		req, err := cube.Validate(solved)
		Expect(err).NotTo(HaveOccurred())
		Expect(req).To(Equal(solver.Request(solved)))
	})

	It("should normalize before checking", func() {
		req, err := cube.Validate("  " + strings.ToLower(solved) + "\n")
		Expect(err).NotTo(HaveOccurred())
		Expect(req).To(Equal(solver.Request(solved)))
	})

	DescribeTable("rejections",
		func(state, code, message string) {
			_, err := cube.Validate(state)
			Expect(err).To(HaveOccurred())
			Expect(cube.Code(err)).To(Equal(code))
			Expect(err.Error()).To(Equal(message))
		},
		Entry("too short", solved[:53], "invalid_length",
			"state must contain 54 facelets; received 53"),
		Entry("empty", "", "invalid_length",
			"state must contain 54 facelets; received 0"),
		Entry("unknown letters", "XZ"+solved[2:], "invalid_colors",
			"state contains unsupported colors: [X Z]"),
		Entry("unbalanced", "R"+solved[1:], "invalid_distribution",
			"color U must appear 9 times; received 8"),
	)

	It("should check length before colors", func() {
		_, err := cube.Validate("XXXX")
		Expect(cube.Code(err)).To(Equal("invalid_length"))
	})

	It("should expose the failure as an ozzo validation error", func() {
		_, err := cube.Validate(solved[:10])

		var verr validation.Error
		Expect(errors.As(err, &verr)).To(BeTrue())
		Expect(verr.Params()).To(HaveKeyWithValue("received", 10))
	})

	It("should return no code for other errors", func() {
		Expect(cube.Code(errors.New("boom"))).To(BeEmpty())
	})
})
