package txn

import "tableflip.dev/chainjournal/pkg/journal"

// BuildCreateJournal calls new_journal with title and transfers the new
// journal to signer. Callers must not pass blank titles.
func BuildCreateJournal(packageID, title, signer string) *Transaction {
	tx := New()
	j := tx.MoveCall(journal.Target(packageID, journal.FuncNewJournal), tx.PureString(title))
	tx.TransferObjects([]Argument{j}, tx.PureAddress(signer))
	return tx
}

// BuildAddEntry appends content to the journal. The contract stamps the entry
// from the shared clock; no timestamp is sent.
func BuildAddEntry(packageID, journalID, content string) *Transaction {
	tx := New()
	tx.MoveCall(journal.Target(packageID, journal.FuncAddEntry),
		tx.Object(journalID),
		tx.PureString(content),
		tx.Clock(),
	)
	return tx
}
