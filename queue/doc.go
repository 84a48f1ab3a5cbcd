// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package queue simulates the waiting lines of the venue's service points and
keeps bookings consistent with them.

# Model

A Line holds one stand's counters. People leave the line one per
service_seconds/servers; Decay applies that drain lazily whenever a stand is
read or written, moving the clock forward in whole intervals so partial
progress on the person at the counter is not lost. An empty line never
banks credit: its clock is pinned to the current time.

# Storage

Store persists lines in the stand table and every person in line as a
reservation row (named bookings and anonymous walk-ins). Each operation runs
in a single transaction:

 1. Load the stand (row-locked on PostgreSQL)
 2. Apply decay and mark the oldest waiting rows served
 3. Apply the operation
 4. Write the counters back

so queue_counter always equals the number of waiting rows. A mismatch aborts
with ErrInconsistent.

# Background decay

Decayer runs DecayAll on a ticker so the stored counters stay close to the
truth even when nobody looks at a stand. SeedRandomQueues fills every line
with random walk-ins for demos.
*/
package queue
