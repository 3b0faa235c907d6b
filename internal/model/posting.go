package model

// Posting is a single debit or credit movement against one account, as
// read from the ledger.
type Posting struct {
	EntryNumber string
	Date        Date
	AccountID   int
	Amount      LineAmount
}

// PostingsFrom flattens posted entries into postings. Drafts and voided
// entries never reach the ledger.
func PostingsFrom(entries []JournalEntry) []Posting {
	var postings []Posting
	for _, e := range entries {
		if e.Status != StatusPosted {
			continue
		}
		for _, l := range e.Lines {
			postings = append(postings, Posting{
				EntryNumber: e.Number,
				Date:        e.Date,
				AccountID:   l.AccountID,
				Amount:      l.Amount,
			})
		}
	}
	return postings
}
