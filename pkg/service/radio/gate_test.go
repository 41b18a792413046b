// Copyright 2025 UMH Systems GmbH
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package radio_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/floower/bloom-core/pkg/service/radio"
)

var _ = Describe("Gate", func() {
	var (
		ctx         context.Context
		permitted   bool
		transceiver *radio.SimulatedTransceiver
		gate        *radio.Gate
	)

	BeforeEach(func() {
		ctx = context.Background()
		permitted = false
		transceiver = radio.NewSimulatedTransceiver()
		gate = radio.NewGate("test-flower", radio.PermitterFunc(func() bool { return permitted }), transceiver)
	})

	It("keeps the radio off while not permitted", func() {
		for i := 0; i < 3; i++ {
			Expect(gate.Reconcile(ctx)).To(Succeed())
		}

		Expect(gate.Enabled()).To(BeFalse())
		Expect(transceiver.GetEnableCalls()).To(BeZero())
	})

	It("enables the radio once permitted and never again", func() {
		permitted = true
		Expect(gate.Reconcile(ctx)).To(Succeed())
		Expect(gate.Enabled()).To(BeTrue())
		Expect(transceiver.IsEnabled()).To(BeTrue())

		permitted = false
		Expect(gate.Reconcile(ctx)).To(Succeed())
		Expect(gate.Reconcile(ctx)).To(Succeed())

		Expect(gate.Enabled()).To(BeTrue())
		Expect(transceiver.GetEnableCalls()).To(Equal(1))
	})

	It("retries on the next cycle when enabling fails", func() {
		permitted = true
		transceiver.SetEnableError(errors.New("controller not ready")) //nolint:err113 // Test needs dynamic error

		Expect(gate.Reconcile(ctx)).To(MatchError(ContainSubstring("controller not ready")))
		Expect(gate.Enabled()).To(BeFalse())

		transceiver.SetEnableError(nil)
		Expect(gate.Reconcile(ctx)).To(Succeed())
		Expect(gate.Enabled()).To(BeTrue())
		Expect(transceiver.GetEnableCalls()).To(Equal(2))
	})

	It("does not enable with a cancelled context", func() {
		permitted = true
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		Expect(gate.Reconcile(cctx)).To(MatchError(context.Canceled))
		Expect(transceiver.GetEnableCalls()).To(BeZero())
	})
})
