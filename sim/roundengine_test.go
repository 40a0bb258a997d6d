package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"
)

var _ = Describe("RoundEngine", func() {
	var (
		mockCtrl *gomock.Controller
		engine   *RoundEngine
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		engine = NewRoundEngine()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should finish immediately without agents", func() {
		Expect(engine.Run()).To(Succeed())
		Expect(engine.CurrentRound()).To(Equal(Round(0)))
	})

	It("should refresh agents until they report no more activity", func() {
		agent := NewMockAgent(mockCtrl)

		refresh1 := agent.EXPECT().Refresh().Return(true)
		refresh2 := agent.EXPECT().Refresh().Return(true).After(refresh1)
		agent.EXPECT().Refresh().Return(false).After(refresh2)

		engine.RegisterAgent(agent)

		Expect(engine.Run()).To(Succeed())
		Expect(engine.CurrentRound()).To(Equal(Round(3)))
	})

	It("should advance the barrier before refreshing any agent", func() {
		barrier := NewMockBarrier(mockCtrl)
		agent := NewMockAgent(mockCtrl)

		advance := barrier.EXPECT().Advance()
		agent.EXPECT().Refresh().Return(false).After(advance)

		engine.RegisterBarrier(barrier)
		engine.RegisterAgent(agent)

		Expect(engine.Run()).To(Succeed())
	})

	It("should refresh agents in registration order", func() {
		agent1 := NewMockAgent(mockCtrl)
		agent2 := NewMockAgent(mockCtrl)

		refresh1 := agent1.EXPECT().Refresh().Return(false)
		agent2.EXPECT().Refresh().Return(false).After(refresh1)

		engine.RegisterAgent(agent1)
		engine.RegisterAgent(agent2)

		Expect(engine.Run()).To(Succeed())
	})

	It("should drop finished agents and keep refreshing the rest", func() {
		agent1 := NewMockAgent(mockCtrl)
		agent2 := NewMockAgent(mockCtrl)

		agent1.EXPECT().Refresh().Return(false)
		agent1.EXPECT().Name().Return("agent1").AnyTimes()
		refresh1 := agent2.EXPECT().Refresh().Return(true)
		agent2.EXPECT().Refresh().Return(false).After(refresh1)

		engine.RegisterAgent(agent1)
		engine.RegisterAgent(agent2)

		Expect(engine.Run()).To(Succeed())
		Expect(engine.CurrentRound()).To(Equal(Round(2)))
	})

	It("should invoke hooks around every round", func() {
		agent := NewMockAgent(mockCtrl)
		agent.EXPECT().Refresh().Return(false)
		agent.EXPECT().Name().Return("agent").AnyTimes()

		recorder := &hookRecorder{}
		engine.AcceptHook(recorder)
		engine.RegisterAgent(agent)

		Expect(engine.Run()).To(Succeed())
		Expect(recorder.positions).To(Equal([]*HookPos{
			HookPosBeforeRound,
			HookPosAgentDone,
			HookPosAfterRound,
		}))
	})

	It("should fail when the round limit is exceeded", func() {
		agent := NewMockAgent(mockCtrl)
		agent.EXPECT().Refresh().Return(true).Times(5)

		engine.WithRoundLimit(5)
		engine.RegisterAgent(agent)

		Expect(engine.Run()).To(HaveOccurred())
		Expect(engine.CurrentRound()).To(Equal(Round(5)))
	})

	It("should call the simulation end handlers", func() {
		handler := NewMockSimulationEndHandler(mockCtrl)
		handler.EXPECT().Handle(Round(0))

		engine.RegisterSimulationEndHandler(handler)
		engine.Finished()
	})
})

type hookRecorder struct {
	positions []*HookPos
}

func (r *hookRecorder) Func(ctx HookCtx) {
	r.positions = append(r.positions, ctx.Pos)
}
