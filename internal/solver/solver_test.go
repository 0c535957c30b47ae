package solver_test

import (
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/solver-dispatch/internal/solver"
)

var _ = Describe("Fingerprint", func() {
	It("should be a stable 12 character hex prefix", func() {
		fp := solver.Fingerprint("UUUUUUUUURRRRRRRRRFFFFFFFFFDDDDDDDDDLLLLLLLLLBBBBBBBBB")
		Expect(fp).To(HaveLen(12))
		Expect(fp).To(MatchRegexp(`^[0-9a-f]{12}$`))
		Expect(solver.Fingerprint("UUUUUUUUURRRRRRRRRFFFFFFFFFDDDDDDDDDLLLLLLLLLBBBBBBBBB")).To(Equal(fp))
	})

	It("should match the sha256 prefix of the state", func() {
		// sha256("abc")
		Expect(solver.Fingerprint("abc")).To(Equal("ba7816bf8f01"))
	})

	It("should differ between states", func() {
		Expect(solver.Fingerprint("a")).NotTo(Equal(solver.Fingerprint("b")))
	})
})

var _ = Describe("Moves", func() {
	It("should clone into an independent slice", func() {
		original := solver.Moves{"R", "U"}
		clone := original.Clone()
		clone[0] = "F"
		Expect(original).To(Equal(solver.Moves{"R", "U"}))
	})

	It("should keep an empty result empty but non-nil", func() {
		Expect(solver.Moves{}.Clone()).To(BeEmpty())
		Expect(solver.Moves{}.Clone()).NotTo(BeNil())
		Expect(solver.Moves(nil).Clone()).To(BeNil())
	})
})

var _ = Describe("Error", func() {
	It("should match the sentinel of its kind only", func() {
		err := solver.NewError(solver.KindUnavailable, "state")
		Expect(errors.Is(err, solver.ErrUnavailable)).To(BeTrue())
		Expect(errors.Is(err, solver.ErrUnreachable)).To(BeFalse())
	})

	It("should expose its causes", func() {
		cause := errors.New("connection refused")
		err := solver.NewError(solver.KindUnreachable, "state", cause)
		Expect(errors.Is(err, cause)).To(BeTrue())
		Expect(err.Error()).To(Equal("external_unreachable: connection refused"))
	})

	It("should carry the fingerprint rather than the state", func() {
		err := solver.NewError(solver.KindCompute, "secret-state")
		Expect(err.Fingerprint).To(Equal(solver.Fingerprint("secret-state")))
		Expect(err.Error()).NotTo(ContainSubstring("secret-state"))
	})

	It("should include the status code when set", func() {
		err := solver.NewError(solver.KindUnavailable, "state")
		err.StatusCode = 503
		Expect(err.Error()).To(Equal("external_unavailable (status 503)"))
	})

	It("should find the outermost kind through wrapping", func() {
		inner := solver.NewError(solver.KindMalformed, "state")
		outer := solver.NewError(solver.KindUnreachable, "state", inner)
		wrapped := fmt.Errorf("dispatch: %w", outer)

		Expect(solver.KindOf(wrapped)).To(Equal(solver.KindUnreachable))
		Expect(errors.Is(wrapped, solver.ErrMalformed)).To(BeTrue())
		Expect(solver.KindOf(errors.New("plain"))).To(BeZero())
	})

	DescribeTable("kind classification",
		func(kind solver.Kind, name string, retryable, remote bool) {
			Expect(kind.String()).To(Equal(name))
			Expect(kind.Retryable()).To(Equal(retryable))
			Expect(kind.Remote()).To(Equal(remote))
		},
		Entry("disabled", solver.KindDisabled, "external_disabled", false, true),
		Entry("circuit open", solver.KindCircuitOpen, "circuit_open", false, true),
		Entry("unavailable", solver.KindUnavailable, "external_unavailable", true, true),
		Entry("unreachable", solver.KindUnreachable, "external_unreachable", true, true),
		Entry("malformed", solver.KindMalformed, "invalid_response", true, true),
		Entry("compute", solver.KindCompute, "compute_failed", false, false),
	)
})
