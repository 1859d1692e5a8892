/*
 * Copyright (c) 2024, link-state-router contributors. All rights reserved.
 */
package hk_test

import (
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/aistore-contrib/lsrouter/hk"
)

var _ = Describe("Housekeeper", func() {
	var h *hk.HK

	BeforeEach(func() {
		h = hk.New()
		go h.Run()
	})

	AfterEach(func() {
		h.Stop()
	})

	It("runs a registered callback and reschedules it", func() {
		calls := make(chan struct{}, 8)
		h.Reg("tick", func() time.Duration {
			calls <- struct{}{}
			return 20 * time.Millisecond
		}, time.Millisecond)

		Eventually(calls, time.Second).Should(Receive())
		Eventually(calls, time.Second).Should(Receive())
	})

	It("stops rescheduling once the callback returns <= 0", func() {
		calls := make(chan struct{}, 8)
		h.Reg("once", func() time.Duration {
			calls <- struct{}{}
			return 0
		}, time.Millisecond)

		Eventually(calls, time.Second).Should(Receive())
		Consistently(calls, 100*time.Millisecond).ShouldNot(Receive())
	})

	It("never invokes a job after Unreg", func() {
		calls := make(chan struct{}, 8)
		h.Reg("cancel-me", func() time.Duration {
			calls <- struct{}{}
			return time.Millisecond
		}, 50*time.Millisecond)
		h.Unreg("cancel-me")

		Consistently(calls, 150*time.Millisecond).ShouldNot(Receive())
	})
})
