/*
Package operation implements the core synchronization logic: planning and
executing the copy set of every manifest record.

	+-------------+
	|  Processor  |
	| (Core Logic)|
	+------+------+
	       |
	+------+------+      +------+------+
	|    Plan     | ---> |   Execute   |
	| (Copy Set)  |      | (Per Task)  |
	+-------------+      +-------------+

🎯 Purpose:
- Loads and parses the manifest into records
- Resolves each record's target directory from the path template
- Copies eligible audio files with existence/size-based skip logic
- Aggregates per-record results for one run

🔄 Flow:
1. Load manifest (structural failure aborts the pass)
2. Fan out every record concurrently
3. Per record: resolve template, ensure target dir, build copy tasks
4. Per task: stat source and destination, copy/skip/fail
5. Join everything, report via status

⚡ Key Responsibilities:
- Idempotent per-file copy decisions (size comparison only, no hashing)
- Atomic destination writes (temp file + rename)
- Error containment: task < record < run, never escalating

📝 Design Philosophy:
The processor is one-directional and stateless between runs. The manifest is
the sole source of truth; a failed copy is retried only by a later pass
re-evaluating the same file, since the destination will still be missing or
size-mismatched.
*/
package operation
