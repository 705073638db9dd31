/*
Package status tracks per-file and per-record copy outcomes for one
processing pass over the manifest.

	            +-------------+
	            |   Status    |
	            | (Outcomes)  |
	            +------+------+
	                   |
	      +-----------+-----------+
	      |                       |
	+-----+-----+           +----+----+
	|  Results  |           |  Logs   |
	| (Collect) |           | (UI/UX) |
	+-----------+           +---------+

🎯 Purpose:
- Models terminal copy-task outcomes (copied, skipped, failed)
- Aggregates per-record results across one run
- Makes every outcome observable through log output

🔄 Flow:
1. Operation reports each terminal task outcome via FileDone
2. Each record's aggregate result arrives via RecordDone
3. FinishRun returns the collected run result and logs totals

⚡ Key Responsibilities:
- Outcome taxonomy and summaries
- Run-scoped result collection (never persisted)
- Console formatting and user-facing event lines

📝 Design Philosophy:
Results live only for the duration of one pass. The manager is safe for
concurrent use because task outcomes arrive from concurrently executing
copy tasks in completion order, not manifest order.
*/
package status
