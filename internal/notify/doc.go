// Package notify carries the controller's outward notification surface.
//
// Every handled stream event is re-emitted as a notification after the
// controller mutates its own state, in the order the events arrived.
// Hosts subscribe through the Emitter and render from the notifications
// plus controller snapshots; they never mutate controller state directly.
package notify
