package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"
)

var _ = Describe("SerialEngine", func() {
	var (
		mockCtrl *gomock.Controller
		engine   *SerialEngine
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		engine = NewSerialEngine()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should run events in time order", func() {
		handler1 := NewMockHandler(mockCtrl)
		handler2 := NewMockHandler(mockCtrl)
		evt1 := NewMockEvent(mockCtrl)
		evt2 := NewMockEvent(mockCtrl)
		evt3 := NewMockEvent(mockCtrl)
		evt4 := NewMockEvent(mockCtrl)

		evt1.EXPECT().Time().Return(VTimeInSec(4.0)).AnyTimes()
		evt1.EXPECT().Handler().Return(handler1).AnyTimes()
		evt1.EXPECT().IsSecondary().Return(false).AnyTimes()
		evt2.EXPECT().Time().Return(VTimeInSec(2.0)).AnyTimes()
		evt2.EXPECT().Handler().Return(handler2).AnyTimes()
		evt2.EXPECT().IsSecondary().Return(false).AnyTimes()
		evt3.EXPECT().Time().Return(VTimeInSec(3.0)).AnyTimes()
		evt3.EXPECT().Handler().Return(handler1).AnyTimes()
		evt3.EXPECT().IsSecondary().Return(false).AnyTimes()
		evt4.EXPECT().Time().Return(VTimeInSec(5.0)).AnyTimes()
		evt4.EXPECT().Handler().Return(handler1).AnyTimes()
		evt4.EXPECT().IsSecondary().Return(false).AnyTimes()

		handleEvt2 := handler2.EXPECT().Handle(evt2).Do(func(e Event) {
			engine.Schedule(evt3)
			engine.Schedule(evt4)
		})
		handleEvt3 := handler1.EXPECT().
			Handle(evt3).Do(func(e Event) {}).After(handleEvt2)
		handleEvt1 := handler1.EXPECT().
			Handle(evt1).Do(func(e Event) {}).After(handleEvt3)
		handler1.EXPECT().
			Handle(evt4).Do(func(e Event) {}).After(handleEvt1)

		engine.Schedule(evt1)
		engine.Schedule(evt2)

		_ = engine.Run()
	})

	It("should handle secondary events after same-time primary events", func() {
		handler1 := NewMockHandler(mockCtrl)
		handler2 := NewMockHandler(mockCtrl)
		handler3 := NewMockHandler(mockCtrl)
		evt1 := NewMockEvent(mockCtrl)
		evt2 := NewMockEvent(mockCtrl)
		evt3 := NewMockEvent(mockCtrl)

		evt1.EXPECT().Time().Return(VTimeInSec(2.0)).AnyTimes()
		evt1.EXPECT().Handler().Return(handler1).AnyTimes()
		evt1.EXPECT().IsSecondary().Return(true).AnyTimes()
		evt2.EXPECT().Time().Return(VTimeInSec(2.0)).AnyTimes()
		evt2.EXPECT().Handler().Return(handler2).AnyTimes()
		evt2.EXPECT().IsSecondary().Return(false).AnyTimes()
		evt3.EXPECT().Time().Return(VTimeInSec(2.0)).AnyTimes()
		evt3.EXPECT().Handler().Return(handler3).AnyTimes()
		evt3.EXPECT().IsSecondary().Return(false).AnyTimes()

		handleEvt2 := handler2.EXPECT().Handle(evt2)
		handleEvt3 := handler3.EXPECT().Handle(evt3)
		handler1.EXPECT().
			Handle(evt1).Do(func(e Event) {}).
			After(handleEvt2).
			After(handleEvt3)

		engine.Schedule(evt1)
		engine.Schedule(evt2)
		engine.Schedule(evt3)

		_ = engine.Run()
	})

	It("should panic when scheduling an event in the past", func() {
		handler := NewMockHandler(mockCtrl)
		evt1 := NewMockEvent(mockCtrl)

		evt1.EXPECT().Time().Return(VTimeInSec(2.0)).AnyTimes()
		evt1.EXPECT().Handler().Return(handler).AnyTimes()
		evt1.EXPECT().IsSecondary().Return(false).AnyTimes()

		handler.EXPECT().Handle(evt1)

		engine.Schedule(evt1)
		_ = engine.Run()

		evtInPast := NewMockEvent(mockCtrl)
		evtInPast.EXPECT().Time().Return(VTimeInSec(1.0)).AnyTimes()

		Expect(func() { engine.Schedule(evtInPast) }).To(Panic())
	})

	It("should advance the current time while running", func() {
		handler := NewMockHandler(mockCtrl)
		evt1 := NewMockEvent(mockCtrl)

		evt1.EXPECT().Time().Return(VTimeInSec(2.0)).AnyTimes()
		evt1.EXPECT().Handler().Return(handler).AnyTimes()
		evt1.EXPECT().IsSecondary().Return(false).AnyTimes()

		handler.EXPECT().Handle(evt1).Do(func(e Event) {
			Expect(engine.CurrentTime()).To(
				BeNumerically("~", 2.0, 1e-12))
		})

		engine.Schedule(evt1)

		_ = engine.Run()

		Expect(engine.CurrentTime()).To(BeNumerically("~", 2.0, 1e-12))
	})

	It("should call end handlers with the final time", func() {
		handler := NewMockHandler(mockCtrl)
		evt1 := NewMockEvent(mockCtrl)

		evt1.EXPECT().Time().Return(VTimeInSec(42.0)).AnyTimes()
		evt1.EXPECT().Handler().Return(handler).AnyTimes()
		evt1.EXPECT().IsSecondary().Return(false).AnyTimes()
		handler.EXPECT().Handle(evt1)

		collector := &endTimeCollector{}
		engine.RegisterSimulationEndHandler(collector)

		engine.Schedule(evt1)
		_ = engine.Run()
		engine.Finished()

		Expect(collector.times).To(Equal([]VTimeInSec{42.0}))
	})
})

type endTimeCollector struct {
	times []VTimeInSec
}

func (c *endTimeCollector) Handle(now VTimeInSec) {
	c.times = append(c.times, now)
}
