/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package event

import (
	"fmt"
)

// ServiceEventID identifies a service lifecycle transition.
type ServiceEventID uint8

const (
	ServiceStarting ServiceEventID = iota + 1
	ServiceStarted
	ServiceStopping
	ServiceStopped
)

func (i ServiceEventID) String() string {
	switch i {
	case ServiceStarting:
		return "STARTING"
	case ServiceStarted:
		return "STARTED"
	case ServiceStopping:
		return "STOPPING"
	case ServiceStopped:
		return "STOPPED"
	}

	return "<unknown>"
}

// MemberEventID identifies a cluster membership transition as seen from
// this client.
type MemberEventID uint8

const (
	MemberJoined MemberEventID = iota + 1
	MemberLeaving
	MemberLeft
)

func (i MemberEventID) String() string {
	switch i {
	case MemberJoined:
		return "JOINED"
	case MemberLeaving:
		return "LEAVING"
	case MemberLeft:
		return "LEFT"
	}

	return "<unknown>"
}

// Member is the minimal view of a cluster member an event carries.
type Member interface {
	Uid() string
	String() string
}

// ServiceEvent reports a lifecycle transition of its source service.
type ServiceEvent struct {
	Source interface{}
	ID     ServiceEventID
}

func (e ServiceEvent) String() string {
	return fmt.Sprintf("ServiceEvent{%s}", e.ID.String())
}

// MemberEvent reports a membership transition attributed to a member.
type MemberEvent struct {
	Source interface{}
	ID     MemberEventID
	Member Member
}

func (e MemberEvent) String() string {
	if e.Member != nil {
		return fmt.Sprintf("MemberEvent{%s %s}", e.ID.String(), e.Member.String())
	}

	return fmt.Sprintf("MemberEvent{%s}", e.ID.String())
}

// ServiceListener observes service lifecycle events.
type ServiceListener interface {
	OnServiceEvent(e ServiceEvent)
}

// MemberListener observes member events.
type MemberListener interface {
	OnMemberEvent(e MemberEvent)
}

// FuncServiceListener adapts a function to the ServiceListener interface.
// Keep the returned value to remove the listener later.
type FuncServiceListener struct {
	Fct func(e ServiceEvent)
}

func (l *FuncServiceListener) OnServiceEvent(e ServiceEvent) {
	if l.Fct != nil {
		l.Fct(e)
	}
}

// FuncMemberListener adapts a function to the MemberListener interface.
type FuncMemberListener struct {
	Fct func(e MemberEvent)
}

func (l *FuncMemberListener) OnMemberEvent(e MemberEvent) {
	if l.Fct != nil {
		l.Fct(e)
	}
}
