// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package registry reads the XML dumps published by the Livsmedelsverket food
// composition API (Livsmedelsdatabasen) and turns each food element of the
// nutrition values feed into a Record of canonical-unit values.
//
// A food element looks like:
//
//	<Livsmedel>
//	  <Nummer>1</Nummer>
//	  <Namn>Nöt talg</Namn>
//	  <Naringsvarden>
//	    <Naringsvarde>
//	      <Namn>Fett</Namn>
//	      <Forkortning>Fett</Forkortning>
//	      <Varde>94,3</Varde>
//	      <Enhet>g</Enhet>
//	    </Naringsvarde>
//	    ...
//	  </Naringsvarden>
//	</Livsmedel>
//
// Values use a decimal comma and non-breaking space thousands separators.
package registry
