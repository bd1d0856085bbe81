package main

const forgeBanner = `
  _  _ ___ _____   ___
 | \| | __|_   _| | __|__ _ _ __ _ ___
 | .' | _|  | |   | _/ _ \ '_/ _' / -_)
 |_|\_|_|   |_|   |_|\___/_| \__, \___|
                             |___/
 candy machine event relay
`
