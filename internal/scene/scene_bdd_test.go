package scene

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/metaballs/internal/contour"
	"github.com/san-kum/metaballs/internal/field"
)

var _ = Describe("Scene", func() {
	var s *Scene

	BeforeEach(func() {
		var err error
		s, err = New(contour.Grid{CellSize: 10, Width: 200, Height: 200},
			[]field.Source{field.NewSource(100, 100, 50, 0, 0)})
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("a single metaball", func() {
		It("traces its influence radius", func() {
			r := s.Contours()
			Expect(r.Segments).NotTo(BeEmpty())
			for _, seg := range r.Segments {
				for _, p := range []field.Vec2{seg.P, seg.Q} {
					d := math.Hypot(p.X-100, p.Y-100)
					Expect(d).To(BeNumerically("~", 50, 10))
				}
			}
		})

		It("fills cells well inside the radius", func() {
			Expect(s.Contours().Filled).To(ContainElement(contour.Cell{I: 9, J: 9}))
			Expect(s.Contours().Filled).NotTo(ContainElement(contour.Cell{I: 0, J: 0}))
		})
	})

	Describe("editing sources", func() {
		It("drops the contour when the last source is removed", func() {
			s.RemoveSource(0)
			Expect(s.Len()).To(BeZero())
			Expect(s.Contours().Empty()).To(BeTrue())
		})

		It("grows the contour with the radius", func() {
			small := s.Contours().Length()
			s.SetRadius(0, 70)
			Expect(s.Contours().Length()).To(BeNumerically(">", small))
		})

		It("moves the contour with the position", func() {
			s.SetPosition(0, 60, 60)
			for _, seg := range s.Contours().Segments {
				Expect(math.Hypot(seg.P.X-60, seg.P.Y-60)).To(BeNumerically("~", 50, 10))
			}
		})

		It("keeps velocity edits out of the field until the next step", func() {
			before := s.Contours()
			s.SetVelocity(0, 10, 0)
			Expect(s.Contours()).To(Equal(before))
			s.Advance()
			Expect(s.Source(0).Position).To(Equal(field.Vec2{X: 110, Y: 100}))
		})

		It("returns the index of an added source", func() {
			idx := s.AddSource(field.NewSource(20, 20, 5, 0, 0))
			Expect(idx).To(Equal(1))
			Expect(s.Sources()).To(HaveLen(2))
		})
	})

	Describe("resizing", func() {
		It("rejects negative viewports", func() {
			Expect(s.Resize(-1, 10)).To(MatchError(contour.ErrViewport))
			Expect(s.Grid().Width).To(Equal(200))
		})

		It("drops cells outside a shrunk viewport", func() {
			Expect(s.Resize(95, 95)).To(Succeed())
			for _, seg := range s.Contours().Segments {
				Expect(seg.P.X).To(BeNumerically("<=", 90))
				Expect(seg.Q.Y).To(BeNumerically("<=", 90))
			}
		})
	})
})
