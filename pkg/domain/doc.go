/*
Package domain contains the core models of the lead qualification engine.

It defines the question catalog a tenant configures, the per-conversation Session the
engine advances, and the Request/Result envelope exchanged with callers. This package is
kept pure and free of I/O or persistence concerns.

# Key Entities

  - Question / Catalog: the ordered qualification questions of a tenant, with their trigger criteria.
  - Session: progress of one conversation (current step, accumulated score, status).
  - Bucket: Hot, Warm or Cold. Used both for a single answer and for the final score.
  - Outcome: what the caller should do next (ask the next question, report completion, or fix its input).
*/
package domain
