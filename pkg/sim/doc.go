// Package sim provides a scriptable in-process peer for exercising the link
// stack without hardware. A Peer implements both link.Transport and
// link.ControlPins: it models the two boot partitions, answers commands the
// way the real coprocessor firmware does, and queues notifications that are
// delivered one per exchange.
package sim
