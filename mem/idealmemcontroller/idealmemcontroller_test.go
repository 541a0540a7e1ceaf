package idealmemcontroller

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/cachesim/mem"
	"github.com/sarchlab/cachesim/sim"
	gomock "go.uber.org/mock/gomock"
)

var _ = Describe("Ideal Memory Controller", func() {
	var (
		mockCtrl      *gomock.Controller
		engine        *MockEngine
		port          *MockPort
		memController *Comp
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())

		engine = NewMockEngine(mockCtrl)
		port = NewMockPort(mockCtrl)
		port.EXPECT().
			AsRemote().
			Return(sim.RemotePort("MemCtrl.Top")).
			AnyTimes()

		memController = MakeBuilder().
			WithEngine(engine).
			WithFreq(1000 * sim.MHz).
			WithLatency(10).
			WithNewStorage(1 * mem.MB).
			Build("MemCtrl")
		memController.topPort = port
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should process read request", func() {
		readReq := mem.ReadReqBuilder{}.
			WithSrc("Port").
			WithDst(memController.topPort.AsRemote()).
			WithAddress(0).
			WithByteSize(4).
			Build()

		port.EXPECT().RetrieveIncoming().Return(readReq)
		engine.EXPECT().CurrentTime().Return(sim.VTimeInSec(10))
		engine.EXPECT().
			Schedule(gomock.AssignableToTypeOf(&readRespondEvent{}))

		madeProgress := memController.Tick()

		Expect(madeProgress).To(BeTrue())
	})

	It("should process write request", func() {
		writeReq := mem.WriteReqBuilder{}.
			WithSrc("Port").
			WithDst(memController.topPort.AsRemote()).
			WithAddress(0).
			WithData([]byte{0, 1, 2, 3}).
			Build()

		port.EXPECT().RetrieveIncoming().Return(writeReq)
		engine.EXPECT().CurrentTime().Return(sim.VTimeInSec(10))
		engine.EXPECT().
			Schedule(gomock.AssignableToTypeOf(&writeRespondEvent{}))

		madeProgress := memController.Tick()

		Expect(madeProgress).To(BeTrue())
	})

	It("should handle read respond event", func() {
		data := []byte{1, 2, 3, 4}
		memController.Storage.Write(0, data)

		readReq := mem.ReadReqBuilder{}.
			WithSrc("Port").
			WithDst(memController.topPort.AsRemote()).
			WithAddress(0).
			WithByteSize(4).
			Build()
		event := newReadRespondEvent(11, memController, readReq)

		port.EXPECT().
			Send(gomock.AssignableToTypeOf(&mem.DataReadyRsp{})).
			Do(func(rsp *mem.DataReadyRsp) {
				Expect(rsp.Data).To(Equal(data))
				Expect(rsp.RespondTo).To(Equal(readReq.ID))
			})
		engine.EXPECT().CurrentTime().Return(sim.VTimeInSec(11))
		engine.EXPECT().Schedule(gomock.AssignableToTypeOf(sim.TickEvent{}))

		memController.Handle(event)
	})

	It("should retry read if sending DataReady failed", func() {
		readReq := mem.ReadReqBuilder{}.
			WithSrc("Port").
			WithDst(memController.topPort.AsRemote()).
			WithAddress(0).
			WithByteSize(4).
			Build()
		event := newReadRespondEvent(11, memController, readReq)

		port.EXPECT().
			Send(gomock.AssignableToTypeOf(&mem.DataReadyRsp{})).
			Return(sim.NewSendError())
		engine.EXPECT().
			Schedule(gomock.AssignableToTypeOf(&readRespondEvent{}))

		memController.Handle(event)
	})

	It("should handle write respond event without dirty mask", func() {
		writeReq := mem.WriteReqBuilder{}.
			WithSrc("Port").
			WithDst(memController.topPort.AsRemote()).
			WithAddress(0).
			WithData([]byte{1, 2, 3, 4}).
			Build()
		event := newWriteRespondEvent(11, memController, writeReq)

		port.EXPECT().
			Send(gomock.AssignableToTypeOf(&mem.WriteDoneRsp{})).
			Return(nil)
		engine.EXPECT().CurrentTime().Return(sim.VTimeInSec(11))
		engine.EXPECT().Schedule(gomock.AssignableToTypeOf(sim.TickEvent{}))

		memController.Handle(event)

		retData, _ := memController.Storage.Read(0, 4)
		Expect(retData).To(Equal([]byte{1, 2, 3, 4}))
	})

	It("should only write the dirty bytes", func() {
		memController.Storage.Write(0, []byte{9, 9, 9, 9})

		writeReq := mem.WriteReqBuilder{}.
			WithSrc("Port").
			WithDst(memController.topPort.AsRemote()).
			WithAddress(0).
			WithData([]byte{1, 2, 3, 4}).
			WithDirtyMask([]bool{false, true, false, false}).
			Build()
		event := newWriteRespondEvent(11, memController, writeReq)

		port.EXPECT().
			Send(gomock.AssignableToTypeOf(&mem.WriteDoneRsp{})).
			Return(nil)
		engine.EXPECT().CurrentTime().Return(sim.VTimeInSec(11))
		engine.EXPECT().Schedule(gomock.AssignableToTypeOf(sim.TickEvent{}))

		memController.Handle(event)

		retData, _ := memController.Storage.Read(0, 4)
		Expect(retData).To(Equal([]byte{9, 2, 9, 9}))
	})
})
