package particle_test

import (
	"errors"
	"math"
	"testing"

	"github.com/golang/geo/r3"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/massim/internal/dynamo"
	"github.com/san-kum/massim/internal/particle"
)

func TestWorld(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Particle World Suite")
}

func add(w *particle.World, pos r3.Vector, mass, damping float64) particle.Handle {
	p, err := particle.New(pos, mass, damping)
	Expect(err).NotTo(HaveOccurred())
	return w.Arena().Add(p)
}

var _ = Describe("World", func() {
	const dt = 0.01

	var w *particle.World

	BeforeEach(func() {
		var err error
		w, err = particle.NewWorld(64, 0)
		Expect(err).NotTo(HaveOccurred())
	})

	It("starts each frame with empty accumulators", func() {
		h := add(w, r3.Vector{}, 1, 1)
		w.Arena().Get(h).AddForce(r3.Vector{X: 3})
		w.StartFrame()
		Expect(w.Arena().Get(h).AccumulatedForce()).To(Equal(r3.Vector{}))
	})

	It("lets a falling particle come to rest on the ground", func() {
		h := add(w, r3.Vector{Y: 1}, 1, 0.99)
		Expect(w.Registry().Add(w.Arena(), h, particle.NewGravity(r3.Vector{Y: -10}))).To(Succeed())
		ground := particle.NewGroundContactGenerator(particle.DefaultGroundRestitution)
		Expect(ground.Track(w.Arena(), h)).To(Succeed())
		w.AddContactGenerator(ground)

		for i := 0; i < 500; i++ {
			Expect(w.Step(dt)).To(Succeed())
		}

		p := w.Arena().Get(h)
		Expect(p.Position.Y).To(BeNumerically("~", 0, 1e-3))
		Expect(math.Abs(p.Velocity.Y)).To(BeNumerically("<", 0.2))
	})

	It("pulls a free rod chain back to its rest lengths over a few frames", func() {
		a := add(w, r3.Vector{}, 1, 1)
		b := add(w, r3.Vector{X: 1.1}, 1, 1)
		c := add(w, r3.Vector{X: 2}, 1, 1)

		var rods []*particle.Rod
		for _, ends := range [][2]particle.Handle{{a, b}, {b, c}} {
			rod, err := particle.NewRod(w.Arena(), ends[0], ends[1], 1)
			Expect(err).NotTo(HaveOccurred())
			w.AddContactGenerator(rod)
			rods = append(rods, rod)
		}

		for i := 0; i < 40; i++ {
			Expect(w.Step(dt)).To(Succeed())
		}

		for _, rod := range rods {
			length := w.Arena().Get(rod.A).Position.Distance(w.Arena().Get(rod.B).Position)
			Expect(length).To(BeNumerically("~", rod.Length, dynamo.Epsilon))
		}
	})

	It("keeps a cable-hung particle within reach of its anchor", func() {
		anchor := r3.Vector{Y: 5}
		h := add(w, r3.Vector{X: 1, Y: 4}, 1, 0.95)
		Expect(w.Registry().Add(w.Arena(), h, particle.NewGravity(r3.Vector{Y: -10}))).To(Succeed())
		cable, err := particle.NewAnchoredCable(w.Arena(), h, &anchor, 2, 0.3)
		Expect(err).NotTo(HaveOccurred())
		w.AddContactGenerator(cable)

		for i := 0; i < 300; i++ {
			Expect(w.Step(dt)).To(Succeed())
			Expect(w.Arena().Get(h).Position.Distance(anchor)).To(BeNumerically("<=", 2+1e-6))
		}
	})

	It("reports divergence as an unstable simulation error", func() {
		h := add(w, r3.Vector{}, 1, 1)
		w.Arena().Get(h).Velocity = r3.Vector{X: math.Inf(1)}

		err := w.Step(dt)
		Expect(err).To(MatchError(dynamo.ErrUnstable))
		var simErr *dynamo.SimulationError
		Expect(errors.As(err, &simErr)).To(BeTrue())
		Expect(simErr.Step).To(Equal(1))
	})

	It("exposes rods and cables as links in its frame", func() {
		a := add(w, r3.Vector{}, 1, 1)
		b := add(w, r3.Vector{X: 1}, 1, 1)
		rod, err := particle.NewRod(w.Arena(), a, b, 1)
		Expect(err).NotTo(HaveOccurred())
		w.AddContactGenerator(rod)

		f := w.Frame()
		Expect(f.Positions).To(HaveLen(2))
		Expect(f.Links).To(ConsistOf(dynamo.Link{A: 0, B: 1}))
	})
})
