// Command walletimport imports a CA-issued X.509 identity into the
// filesystem wallet so the backend can open ledger sessions under it.
//
// Typical usage, from cryptogen output:
//
//	walletimport -label admin -msp HospitalApolloMSP \
//	    -cred ../Blockchain/compose/organizations/peerOrganizations/hospitalapollo.healthcare.com/users/Admin@hospitalapollo.healthcare.com/msp
//
//	walletimport -label auditOrgAdmin -msp AuditOrgMSP \
//	    -cred ../Blockchain/compose/organizations/peerOrganizations/auditorg.healthcare.com/users/Admin@auditorg.healthcare.com/msp
package main

import (
	"flag"
	"log"

	"github.com/medichain/healthcare-backend/fabric"
)

func main() {
	label := flag.String("label", "admin", "wallet label to store the identity under")
	mspID := flag.String("msp", "", "membership service provider id of the identity")
	credPath := flag.String("cred", "", "MSP credential directory (contains signcerts/ and keystore/)")
	walletPath := flag.String("wallet", "wallet", "wallet directory")
	flag.Parse()

	if *mspID == "" || *credPath == "" {
		log.Fatal("both -msp and -cred are required")
	}

	wallet, err := fabric.NewWallet(*walletPath)
	if err != nil {
		log.Fatalf("open wallet: %v", err)
	}

	if err := wallet.ImportIdentity(*label, *mspID, *credPath); err != nil {
		log.Fatalf("import identity: %v", err)
	}

	log.Printf("identity %q (%s) imported into %s", *label, *mspID, *walletPath)
}
