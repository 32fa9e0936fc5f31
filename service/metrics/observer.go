// Copyright 2021 Optakt Labs OÜ
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/optakt/credit-ledger/models/ledger"
)

// Deliveries holds the counters shared by all observer decorators.
type Deliveries struct {
	sent   *prometheus.CounterVec
	failed *prometheus.CounterVec
}

// NewDeliveries creates the delivery counters on the given registerer.
func NewDeliveries(reg prometheus.Registerer) *Deliveries {

	factory := promauto.With(reg)

	sent := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "observer_messages_sent_total",
		Help:      "number of messages delivered to observers by topic",
	}, []string{"topic"})

	failed := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "observer_messages_failed_total",
		Help:      "number of messages that could not be delivered to observers by topic",
	}, []string{"topic"})

	d := Deliveries{
		sent:   sent,
		failed: failed,
	}

	return &d
}

// Wrap returns an observer that counts deliveries to the given observer.
func (d *Deliveries) Wrap(observer ledger.Observer) *Observer {
	o := Observer{
		Observer:   observer,
		deliveries: d,
	}
	return &o
}

// Observer counts sent and failed messages of the embedded observer.
type Observer struct {
	ledger.Observer
	deliveries *Deliveries
}

func (o *Observer) Send(message ledger.Message) error {
	err := o.Observer.Send(message)
	if err != nil {
		o.deliveries.failed.WithLabelValues(string(message.Topic)).Inc()
		return err
	}
	o.deliveries.sent.WithLabelValues(string(message.Topic)).Inc()
	return nil
}
